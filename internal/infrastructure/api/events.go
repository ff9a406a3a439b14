package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"catalog-sync-shopify-layer/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

// syncEventsHandler streams sync progress as server-sent events.
// ?shop= narrows the stream to one shop.
func syncEventsHandler(ps *pubsub.SyncPubSub, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeMessage(w, http.StatusInternalServerError, "Streaming unsupported")
			return
		}

		shop := r.URL.Query().Get("shop")
		sub := ps.Subscribe(r.Context(), shop)
		defer ps.Unsubscribe(sub.ID)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		logger.Debug().Str("channelId", sub.ID).Str("shop", shop).Msg("Sync event stream opened")

		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-sub.Events:
				if !ok {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					logger.Error().Err(err).Msg("Failed to encode sync event")
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"catalog-sync-shopify-layer/internal/application"
	"catalog-sync-shopify-layer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type createProductRequest struct {
	Shop        string              `json:"shop"`
	AccessToken string              `json:"accessToken"`
	ProductData domain.ProductDraft `json:"productData"`
}

type autoSyncRequest struct {
	Enabled     bool   `json:"enabled"`
	AccessToken string `json:"accessToken"`
}

// saveCredentialsHandler creates or updates the inventory API credentials of a shop
func saveCredentialsHandler(svc CredentialsManager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input application.SaveCredentialsInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		creds, err := svc.SaveCredentials(r.Context(), input)
		if err != nil {
			if statusFor(err) == http.StatusBadRequest {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error().Err(err).Str("shop", input.Shop).Msg("Error saving api credentials")
			writeMessage(w, http.StatusInternalServerError, "Failed to save api credentials")
			return
		}

		writeJSON(w, http.StatusOK, creds.Redacted())
	}
}

// syncHandler runs one sync pass with the credentials in the request body
func syncHandler(svc Syncer, timeout time.Duration, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req application.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Trigger = application.TriggerHTTP

		ctx, cancel := withTimeout(r.Context(), timeout)
		defer cancel()

		report, err := svc.Sync(ctx, req)
		if err != nil {
			logger.Error().Err(err).Str("shop", req.Shop).Msg("Error sync")
			writeSyncError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// syncStoredHandler runs a sync with the shop's stored credentials and token
func syncStoredHandler(svc Syncer, timeout time.Duration, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := chi.URLParam(r, "shop")

		ctx, cancel := withTimeout(r.Context(), timeout)
		defer cancel()

		report, err := svc.SyncShop(ctx, shop, application.TriggerHTTP)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Error sync")
			writeSyncError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// createProductHandler publishes a single product. Only POST is accepted.
func createProductHandler(svc ProductCreator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, nil)
			return
		}

		var req createProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		product, err := svc.CreateProduct(r.Context(), req.Shop, req.AccessToken, req.ProductData)
		if err != nil {
			logger.Error().Err(err).Str("shop", req.Shop).Msg("Error adding product")
			writeMessage(w, http.StatusInternalServerError, "Failed to add product")
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func getCredentialsHandler(svc CredentialsManager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := chi.URLParam(r, "shop")
		creds, err := svc.GetCredentials(r.Context(), shop)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to get api credentials")
			}
			writeMessage(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, creds.Redacted())
	}
}

func autoSyncHandler(svc CredentialsManager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := chi.URLParam(r, "shop")
		var req autoSyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		creds, err := svc.SetAutoSync(r.Context(), shop, req.Enabled, req.AccessToken)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to update auto sync")
				writeMessage(w, status, "Failed to update auto sync")
				return
			}
			writeMessage(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, creds.Redacted())
	}
}

func listRunsHandler(svc Syncer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := chi.URLParam(r, "shop")
		runs, err := svc.ListRuns(r.Context(), shop)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to list sync runs")
			writeMessage(w, http.StatusInternalServerError, "Failed to list sync runs")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

package domain

import (
	"errors"
	"time"
)

// SyncState is the lifecycle state of one sync pass
type SyncState string

const (
	SyncStateAuthenticating SyncState = "AUTHENTICATING"
	SyncStateListing        SyncState = "LISTING"
	SyncStatePublishing     SyncState = "PUBLISHING"
	SyncStateDone           SyncState = "DONE"
	SyncStateFailed         SyncState = "FAILED"
)

// SyncStage names the step where an error occurred
type SyncStage string

const (
	StageAuthenticating SyncStage = "authenticating"
	StageListing        SyncStage = "listing"
	StagePrice          SyncStage = "price"
	StagePublish        SyncStage = "publish"
	StageDedup          SyncStage = "dedup"
)

// OutcomeStatus is the result of processing one article
type OutcomeStatus string

const (
	OutcomePublished OutcomeStatus = "published"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// ArticleOutcome records what happened to one article during a sync
type ArticleOutcome struct {
	ArticleID string        `json:"articleId"`
	Title     string        `json:"title"`
	Status    OutcomeStatus `json:"status"`
	Stage     SyncStage     `json:"stage,omitempty"`
	ProductID uint64        `json:"productId,omitempty"`
	Price     string        `json:"price,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// SyncReport aggregates the per-article outcomes of one sync pass
type SyncReport struct {
	ID         string           `json:"id"`
	Shop       string           `json:"shop"`
	State      SyncState        `json:"state"`
	Trigger    string           `json:"trigger,omitempty"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt,omitempty"`
	Articles   int              `json:"articles"`
	Published  int              `json:"published"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Outcomes   []ArticleOutcome `json:"outcomes"`
	Error      string           `json:"error,omitempty"`
}

// NewSyncReport starts a report in the AUTHENTICATING state
func NewSyncReport(id, shop, trigger string, startedAt time.Time) *SyncReport {
	return &SyncReport{
		ID:        id,
		Shop:      shop,
		Trigger:   trigger,
		State:     SyncStateAuthenticating,
		StartedAt: startedAt,
		Outcomes:  []ArticleOutcome{},
	}
}

// Finish tallies outcomes and moves the report to its terminal state.
// An empty inventory is a completed pass with nothing to publish.
func (r *SyncReport) Finish(at time.Time, err error) {
	r.FinishedAt = at
	r.Published, r.Failed, r.Skipped = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomePublished:
			r.Published++
		case OutcomeFailed:
			r.Failed++
		case OutcomeSkipped:
			r.Skipped++
		}
	}

	switch {
	case err == nil:
		r.State = SyncStateDone
	case errors.Is(err, ErrNoArticles):
		r.State = SyncStateDone
		r.Error = err.Error()
	default:
		r.State = SyncStateFailed
		r.Error = err.Error()
	}
}

// Duration of the pass, zero while running
func (r *SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SyncEventType tags events streamed to subscribers
type SyncEventType string

const (
	SyncEventStarted  SyncEventType = "sync.started"
	SyncEventArticle  SyncEventType = "sync.article"
	SyncEventFinished SyncEventType = "sync.finished"
)

// SyncEvent is a progress notification for a running sync
type SyncEvent struct {
	Type    SyncEventType   `json:"type"`
	RunID   string          `json:"runId"`
	Shop    string          `json:"shop"`
	Outcome *ArticleOutcome `json:"outcome,omitempty"`
	Report  *SyncReport     `json:"report,omitempty"`
	At      time.Time       `json:"at"`
}

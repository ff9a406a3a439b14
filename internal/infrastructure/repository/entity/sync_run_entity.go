package entity

import (
	"time"

	"catalog-sync-shopify-layer/internal/domain"
)

// MongoSyncRunDoc represents a finished sync report in MongoDB
type MongoSyncRunDoc struct {
	ID         string                `bson:"_id"`
	Shop       string                `bson:"shop"`
	State      string                `bson:"state"`
	Trigger    string                `bson:"trigger,omitempty"`
	StartedAt  time.Time             `bson:"startedAt"`
	FinishedAt time.Time             `bson:"finishedAt"`
	Articles   int                   `bson:"articles"`
	Published  int                   `bson:"published"`
	Failed     int                   `bson:"failed"`
	Skipped    int                   `bson:"skipped"`
	Outcomes   []MongoArticleOutcome `bson:"outcomes"`
	Error      string                `bson:"error,omitempty"`
}

// MongoArticleOutcome is one article result embedded in a sync run
type MongoArticleOutcome struct {
	ArticleID string `bson:"articleId"`
	Title     string `bson:"title"`
	Status    string `bson:"status"`
	Stage     string `bson:"stage,omitempty"`
	ProductID uint64 `bson:"productId,omitempty"`
	Price     string `bson:"price,omitempty"`
	Error     string `bson:"error,omitempty"`
}

// ToDomain converts the MongoDB document to a domain report
func (d *MongoSyncRunDoc) ToDomain() *domain.SyncReport {
	report := &domain.SyncReport{
		ID:         d.ID,
		Shop:       d.Shop,
		State:      domain.SyncState(d.State),
		Trigger:    d.Trigger,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
		Articles:   d.Articles,
		Published:  d.Published,
		Failed:     d.Failed,
		Skipped:    d.Skipped,
		Outcomes:   make([]domain.ArticleOutcome, 0, len(d.Outcomes)),
		Error:      d.Error,
	}
	for _, o := range d.Outcomes {
		report.Outcomes = append(report.Outcomes, domain.ArticleOutcome{
			ArticleID: o.ArticleID,
			Title:     o.Title,
			Status:    domain.OutcomeStatus(o.Status),
			Stage:     domain.SyncStage(o.Stage),
			ProductID: o.ProductID,
			Price:     o.Price,
			Error:     o.Error,
		})
	}
	return report
}

// MongoSyncRunDocFromDomain converts a domain report to a MongoDB document
func MongoSyncRunDocFromDomain(report *domain.SyncReport) *MongoSyncRunDoc {
	doc := &MongoSyncRunDoc{
		ID:         report.ID,
		Shop:       report.Shop,
		State:      string(report.State),
		Trigger:    report.Trigger,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Articles:   report.Articles,
		Published:  report.Published,
		Failed:     report.Failed,
		Skipped:    report.Skipped,
		Outcomes:   make([]MongoArticleOutcome, 0, len(report.Outcomes)),
		Error:      report.Error,
	}
	for _, o := range report.Outcomes {
		doc.Outcomes = append(doc.Outcomes, MongoArticleOutcome{
			ArticleID: o.ArticleID,
			Title:     o.Title,
			Status:    string(o.Status),
			Stage:     string(o.Stage),
			ProductID: o.ProductID,
			Price:     o.Price,
			Error:     o.Error,
		})
	}
	return doc
}

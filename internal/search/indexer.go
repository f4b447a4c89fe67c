// Package search indexes price observations into Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// Indexer stores the observations of one run.
type Indexer interface {
	Index(ctx context.Context, runID string, observations []domain.Observation) error
}

// Document is the indexed form of an observation.
type Document struct {
	RunID        string       `json:"run_id"`
	Slug         string       `json:"product_slug"`
	ProductName  string       `json:"product_name"`
	URL          string       `json:"url"`
	CanonicalURL string       `json:"canonical_url,omitempty"`
	Title        string       `json:"title,omitempty"`
	CurrentPrice *json.Number `json:"current_price"`
	TargetPrice  json.Number  `json:"target_price"`
	IsAlert      bool         `json:"is_alert"`
	Strategy     string       `json:"strategy,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	ObservedAt   time.Time    `json:"observed_at"`
}

// NewDocument builds the document for obs within run runID.
func NewDocument(runID string, obs domain.Observation) Document {
	return Document{
		RunID:        runID,
		Slug:         domain.Slug(obs.ProductName),
		ProductName:  obs.ProductName,
		URL:          obs.URL,
		CanonicalURL: obs.CanonicalURL,
		Title:        obs.Title,
		CurrentPrice: domain.OptionalAmountJSON(obs.CurrentPrice),
		TargetPrice:  domain.AmountJSON(obs.TargetPrice),
		IsAlert:      obs.IsAlert,
		Strategy:     obs.Strategy,
		Reason:       obs.Reason,
		ObservedAt:   obs.ObservedAt,
	}
}

// DocumentID identifies an observation within a run.
func DocumentID(runID, productName string) string {
	return runID + "-" + domain.Slug(productName)
}

// ElasticIndexer writes one document per observation.
type ElasticIndexer struct {
	client *es.Client
	index  string
	logger logger.Logger
}

// NewElasticIndexer creates the client. It does not contact the cluster.
func NewElasticIndexer(cfg Config, log logger.Logger) (*ElasticIndexer, error) {
	clientConfig := es.Config{
		Addresses:  cfg.Addresses,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.Username != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ElasticIndexer{
		client: client,
		index:  cfg.IndexName(),
		logger: log,
	}, nil
}

// Index writes every observation and returns the joined failures.
func (i *ElasticIndexer) Index(ctx context.Context, runID string, observations []domain.Observation) error {
	var errs []error
	for _, obs := range observations {
		if err := i.indexOne(ctx, runID, obs); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		i.logger.Debug("Indexed observations",
			logger.String("index", i.index),
			logger.Int("count", len(observations)),
		)
	}
	return errors.Join(errs...)
}

func (i *ElasticIndexer) indexOne(ctx context.Context, runID string, obs domain.Observation) error {
	body, err := json.Marshal(NewDocument(runID, obs))
	if err != nil {
		return fmt.Errorf("marshal observation %q: %w", obs.ProductName, err)
	}

	id := DocumentID(runID, obs.ProductName)
	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("index observation %s: %w", id, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index observation %s: status %d: %s", id, res.StatusCode, string(msg))
	}
	return nil
}

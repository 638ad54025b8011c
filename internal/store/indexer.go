// internal/store/indexer.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"agroscore/internal/common/errors"
	"agroscore/internal/common/logger"
	"agroscore/internal/models"
)

// Indexer pushes decision payloads into Elasticsearch so analysts can search
// and aggregate them. Indexing is secondary to the ledger: the ledger row is
// authoritative.
type Indexer struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{es: es, index: index, log: log}
}

// IndexDecision writes one payload document keyed by the ledger decision ID.
func (i *Indexer) IndexDecision(ctx context.Context, decisionID string, payload *models.DecisionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode decision document: %w", err)
	}

	res, err := i.es.Index(
		i.index,
		bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(decisionID),
	)
	if err != nil {
		return errors.NewDecisionIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewDecisionIndexFailedError(fmt.Errorf("index response: %s", res.Status()))
	}

	i.log.Debug("decision indexed", map[string]interface{}{
		"decision_id": decisionID,
		"index":       i.index,
	})
	return nil
}

package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/pkg/events"
)

// IdolIndexer keeps the Elasticsearch idol index in step with catalog events.
type IdolIndexer struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewIdolIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *IdolIndexer {
	if es == nil || index == "" {
		return nil
	}
	return &IdolIndexer{ES: es, Index: index, Logger: logger}
}

// Handle applies one event to the index. Malformed events fail with
// domain.ErrInvalidArgument and are not worth retrying.
func (x *IdolIndexer) Handle(ctx context.Context, evt events.IdolEvent) error {
	switch evt.Type {
	case events.IdolUpserted:
		if evt.Idol == nil {
			return fmt.Errorf("event %s for idol %d has no document: %w", evt.Type, evt.IdolID, domain.ErrInvalidArgument)
		}
		return x.Put(ctx, evt.Idol)
	case events.IdolDeleted:
		return x.Remove(ctx, evt.IdolID)
	default:
		return fmt.Errorf("unknown event type %q: %w", evt.Type, domain.ErrInvalidArgument)
	}
}

func (x *IdolIndexer) Put(ctx context.Context, doc *events.IdolDoc) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.Index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index idol %d: %s", doc.ID, res.Status())
	}
	return nil
}

// Remove deletes the document; a missing document is not an error.
func (x *IdolIndexer) Remove(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete idol %d: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over idol and member names.
func (x *IdolIndexer) Search(ctx context.Context, q string, size int) ([]events.IdolDoc, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "member_names"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if x.Logger != nil {
			x.Logger.WithField("status", res.Status()).Warn("es search response error")
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source events.IdolDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]events.IdolDoc, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

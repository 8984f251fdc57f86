package oplog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

const DefaultIndex = "operation_logs"

type ESConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// ES indexes operation logs and answers full-text queries over them.
type ES struct {
	client *elasticsearch.Client
	index  string
}

func NewES(cfg ESConfig) (*ES, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &ES{client: client, index: index}, nil
}

// Ping fails unless the cluster answers its info endpoint.
func (e *ES) Ping(ctx context.Context) error {
	res, err := e.client.Info(e.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return nil
}

func (e *ES) Index(ctx context.Context, entry *models.OperationLog) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(entry.ID),
	)
	if err != nil {
		return fmt.Errorf("index operation log: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index operation log: %s: %s", res.Status(), msg)
	}
	return nil
}

func (e *ES) Search(ctx context.Context, query string, from, size int) (int64, []models.OperationLog, error) {
	q := map[string]any{"match_all": map[string]any{}}
	if query != "" {
		q = map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"userName^2", "path", "action", "params"},
				"fuzziness": "AUTO",
			},
		}
	}
	body := map[string]any{
		"query": q,
		"sort":  []any{map[string]any{"createdAt": map[string]any{"order": "desc"}}},
		"from":  from,
		"size":  size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search operation logs: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search operation logs: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.OperationLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	out := make([]models.OperationLog, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		out[i] = hit.Source
	}
	return r.Hits.Total.Value, out, nil
}

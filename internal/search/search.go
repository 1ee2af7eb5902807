package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Egorka7485/tgkadsf/internal/models"
)

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

// ChannelIndex keeps channels in an Elasticsearch index for full-text search.
type ChannelIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func NewChannelIndex(es *elasticsearch.Client, index string) *ChannelIndex {
	return &ChannelIndex{es: es, index: index}
}

// Ping checks that the cluster answers.
func (ix *ChannelIndex) Ping(ctx context.Context) error {
	res, err := ix.es.Info(ix.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("info", res.StatusCode, res.Body)
	}
	return nil
}

func (ix *ChannelIndex) Index(ctx context.Context, ch models.Channel) error {
	body, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encode channel: %w", err)
	}
	res, err := ix.es.Index(
		ix.index,
		bytes.NewReader(body),
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(strconv.FormatUint(uint64(ch.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index channel: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.StatusCode, res.Body)
	}
	return nil
}

func (ix *ChannelIndex) Delete(ctx context.Context, id uint) error {
	res, err := ix.es.Delete(
		ix.index,
		strconv.FormatUint(uint64(id), 10),
		ix.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.StatusCode, res.Body)
	}
	return nil
}

func (ix *ChannelIndex) Search(ctx context.Context, query string, limit int) ([]models.Channel, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "category", "username"},
				"fuzziness": "AUTO",
			},
		},
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Channel `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.Channel, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func responseError(op string, status int, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("elasticsearch %s: status %d: %s", op, status, bytes.TrimSpace(b))
}

// Package store implements the search-store gateway: the uniform set of
// operations the CDC pipeline and query services use against the backing
// Elasticsearch cluster, expressed over the doc.IndexedDocument contract
// so every entity kind shares one gateway.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/theleeeo/dictionary-indexer/internal/apperr"
	"github.com/theleeeo/dictionary-indexer/internal/doc"
)

// Client is the search-store gateway backed by Elasticsearch.
type Client struct {
	es *elasticsearch.Client
}

// Config addresses the ES cluster.
type Config struct {
	Addresses []string
	Username  string
	Password  string
}

// New constructs a gateway Client from raw connection settings.
func New(cfg Config) (*Client, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return &Client{es: c}, nil
}

// NewFromClient wraps an already-constructed *elasticsearch.Client, used by
// the integration suite against a testcontainers-managed cluster.
func NewFromClient(c *elasticsearch.Client) *Client {
	return &Client{es: c}
}

func backendErr(res interface{ StatusCode() int }, body []byte) error {
	return &apperr.BackendError{Status: res.StatusCode(), Body: string(body)}
}

type statusCoder struct{ code int }

func (s statusCoder) StatusCode() int { return s.code }

// ExistsIndex probes whether a named index exists: true on 2xx, false on
// 404, BackendError on any other transport failure.
func (c *Client) ExistsIndex(ctx context.Context, name string) (bool, error) {
	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &apperr.BackendError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return false, backendErr(statusCoder{res.StatusCode}, raw)
	}
	return true, nil
}

// EnsureIndex is idempotent: if ExistsIndex(doc.IndexName()) then no-op;
// else create with doc.Mapping(). A 4xx "already exists" race from a
// concurrent creator is treated as success.
func (c *Client) EnsureIndex(ctx context.Context, d doc.IndexedDocument) error {
	exists, err := c.ExistsIndex(ctx, d.IndexName())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(d.Mapping())
	if err != nil {
		return &apperr.BackendError{Err: err}
	}

	res, err := c.es.Indices.Create(
		d.IndexName(),
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return &apperr.BackendError{Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		// A concurrent creator may have won the race; re-probe before
		// surfacing the error.
		if exists2, err2 := c.ExistsIndex(ctx, d.IndexName()); err2 == nil && exists2 {
			return nil
		}
		return backendErr(statusCoder{res.StatusCode}, raw)
	}
	return nil
}

// Upsert ensures the index, deletes any existing document with the same id
// (guaranteeing schema-evolved shape is replaced wholesale), then indexes
// doc.Payload() at (doc.IndexName(), doc.ID()).
func (c *Client) Upsert(ctx context.Context, d doc.IndexedDocument) error {
	if err := c.EnsureIndex(ctx, d); err != nil {
		return err
	}
	if err := c.Delete(ctx, d); err != nil {
		return err
	}

	body, err := json.Marshal(d.Payload())
	if err != nil {
		return &apperr.BackendError{Err: err}
	}

	res, err := c.es.Index(
		d.IndexName(),
		bytes.NewReader(body),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(d.ID()),
		c.es.Index.WithRefresh("false"),
	)
	if err != nil {
		return &apperr.BackendError{Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return backendErr(statusCoder{res.StatusCode}, raw)
	}
	return nil
}

// Delete is delete-by-id; 404 is treated as success (idempotent).
func (c *Client) Delete(ctx context.Context, d doc.IndexedDocument) error {
	res, err := c.es.Delete(
		d.IndexName(),
		d.ID(),
		c.es.Delete.WithContext(ctx),
		c.es.Delete.WithRefresh("false"),
	)
	if err != nil {
		return &apperr.BackendError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return backendErr(statusCoder{res.StatusCode}, raw)
	}
	return nil
}

// GetByID returns the stored _source, or NotFound on a 404.
func (c *Client) GetByID(ctx context.Context, index, id string) (map[string]any, error) {
	res, err := c.es.Get(index, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, &apperr.BackendError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, &apperr.NotFound{Index: index, ID: id}
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, backendErr(statusCoder{res.StatusCode}, raw)
	}

	var decoded struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, &apperr.BackendError{Err: err}
	}
	return decoded.Source, nil
}

// SearchResult is one page of matching source documents.
type SearchResult struct {
	Total int64
	Hits  []map[string]any
}

// Search returns the page of _source objects matching d.SearchQuery(term).
func (c *Client) Search(ctx context.Context, d doc.IndexedDocument, term string, from, size int) (*SearchResult, error) {
	body := d.SearchQuery(term)
	return c.SearchRaw(ctx, d.IndexName(), body, from, size)
}

// EnsureDefaultIndices idempotently creates every base-kind index that
// doesn't yet exist, so a fresh cluster is queryable before the first CDC
// message for a given kind ever arrives.
func (c *Client) EnsureDefaultIndices(ctx context.Context) error {
	for _, d := range doc.BaseDocuments() {
		if err := c.EnsureIndex(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// SearchRaw runs a caller-supplied DSL query body against index, used
// for the role-filtered menu-item query.
func (c *Client) SearchRaw(ctx context.Context, index string, dsl map[string]any, from, size int) (*SearchResult, error) {
	full := map[string]any{}
	for k, v := range dsl {
		full[k] = v
	}
	if _, ok := full["query"]; !ok {
		full = map[string]any{"query": dsl}
	}
	full["from"] = from
	full["size"] = size

	b, err := json.Marshal(full)
	if err != nil {
		return nil, &apperr.BackendError{Err: err}
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, &apperr.BackendError{Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return &SearchResult{Total: 0, Hits: []map[string]any{}}, nil
		}
		raw, _ := io.ReadAll(res.Body)
		return nil, backendErr(statusCoder{res.StatusCode}, raw)
	}

	var decoded struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, &apperr.BackendError{Err: err}
	}

	out := &SearchResult{Total: decoded.Hits.Total.Value}
	for _, h := range decoded.Hits.Hits {
		out.Hits = append(out.Hits, h.Source)
	}
	if out.Hits == nil {
		out.Hits = []map[string]any{}
	}
	return out, nil
}

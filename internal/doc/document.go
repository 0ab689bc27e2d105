// Package doc implements the IndexedDocument contract: the uniform
// projection interface every dictionary entity exposes so the CDC
// pipeline and the query services stay polymorphic over entity kind.
// Capability is expressed as a small interface rather than inheritance.
package doc

import "encoding/json"

// IndexedDocument is implemented by every projected entity kind: menu item,
// menu tree, role, window, process, form, browser.
type IndexedDocument interface {
	// IndexName is the target index for this instance, honoring whatever
	// audience-specific override was injected when the value was built.
	IndexName() string
	// ID is the stable document id upserts are keyed on.
	ID() string
	// Payload is the body used for upsert.
	Payload() map[string]any
	// Mapping is the index's field-type schema, used on first write.
	Mapping() map[string]any
	// SearchQuery builds the query-DSL body used for a free-text list call.
	SearchQuery(term string) map[string]any
}

// queryStringWildcard implements the `*term*` query-string policy used by
// entities whose typical lookup is by near-exact id/name rather than prose.
func queryStringWildcard(term string) map[string]any {
	q := "*"
	if term != "" {
		q = "*" + term + "*"
	}
	return map[string]any{
		"query_string": map[string]any{
			"query":            q,
			"default_operator": "AND",
		},
	}
}

// multiMatchNameDescription implements the `multi_match` policy used by
// entities with free-text-heavy prose fields.
func multiMatchNameDescription(term string) map[string]any {
	if term == "" {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"multi_match": map[string]any{
			"query":  term,
			"fields": []string{"name^2", "description"},
		},
	}
}

func baseMapping(extra map[string]any) map[string]any {
	props := map[string]any{
		"uuid":        map[string]any{"type": "keyword"},
		"id":          map[string]any{"type": "keyword"},
		"internal_id": map[string]any{"type": "integer"},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]any{
		"mappings": map[string]any{
			"properties": props,
		},
	}
}

// structToMap round-trips v through JSON so Payload() can return the same
// shape the wire schema uses, keeping field tags as the single source of
// truth for the ES document body.
func structToMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{}
	}
	return out
}

package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/dictionary-indexer/internal/model"
)

func TestMenuItemDoc_PayloadRoundTrips(t *testing.T) {
	item := &model.MenuItem{ID: "1", InternalID: 7, Name: "Sales Order", IsSummary: true}
	d := MenuItemDoc{Index: "menu_item_en_us", Item: item}

	assert.Equal(t, "menu_item_en_us", d.IndexName())
	assert.Equal(t, "1", d.ID())

	payload := d.Payload()
	assert.Equal(t, "1", payload["id"])
	assert.Equal(t, "Sales Order", payload["name"])
	assert.Equal(t, true, payload["is_summary"])
}

func TestMenuItemDoc_SearchQuery_WildcardsTerm(t *testing.T) {
	d := MenuItemDoc{Index: "menu_item", Item: &model.MenuItem{ID: "1"}}

	q := d.SearchQuery("order")
	qs, ok := q["query_string"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "*order*", qs["query"])

	empty := d.SearchQuery("")
	qs2 := empty["query_string"].(map[string]any)
	assert.Equal(t, "*", qs2["query"])
}

func TestWindowDoc_SearchQuery_MultiMatch(t *testing.T) {
	d := WindowDoc{Index: "window", Window: &model.Window{ID: "1"}}

	q := d.SearchQuery("invoice")
	mm, ok := q["multi_match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "invoice", mm["query"])
	assert.Equal(t, []string{"name^2", "description"}, mm["fields"])

	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, d.SearchQuery(""))
}

func TestMapping_CarriesBaseFieldsAndExtras(t *testing.T) {
	d := RoleDoc{Index: "role", Role: &model.Role{ID: "1"}}
	m := d.Mapping()
	props := m["mappings"].(map[string]any)["properties"].(map[string]any)

	assert.Contains(t, props, "uuid")
	assert.Contains(t, props, "internal_id")
	assert.Contains(t, props, "window_access")
	assert.Contains(t, props, "process_access")
}

func TestBaseDocuments_OneOfEachKind(t *testing.T) {
	docs := BaseDocuments()
	require.Len(t, docs, 7)
	for _, d := range docs {
		assert.NotEmpty(t, d.IndexName())
		assert.NotNil(t, d.Mapping())
	}
}

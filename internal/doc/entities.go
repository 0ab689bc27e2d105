package doc

import "github.com/theleeeo/dictionary-indexer/internal/model"

// BaseDocuments returns one zero-valued IndexedDocument per entity kind,
// indexed at the unsuffixed default name, used only to assert the default
// indices exist on startup.
func BaseDocuments() []IndexedDocument {
	return []IndexedDocument{
		MenuItemDoc{Index: "menu_item", Item: &model.MenuItem{}},
		MenuTreeDoc{Index: "menu_tree", Tree: &model.MenuTree{}},
		RoleDoc{Index: "role", Role: &model.Role{}},
		WindowDoc{Index: "window", Window: &model.Window{}},
		ProcessDoc{Index: "process", Process: &model.Process{}},
		FormDoc{Index: "form", Form: &model.Form{}},
		BrowserDoc{Index: "browser", Browser: &model.Browser{}},
	}
}

// MenuItemDoc adapts model.MenuItem to IndexedDocument. Search policy:
// query-string wildcard (menu items are looked up by id/action far more
// often than free text).
type MenuItemDoc struct {
	Index string
	Item  *model.MenuItem
}

func (d MenuItemDoc) IndexName() string { return d.Index }
func (d MenuItemDoc) ID() string { return d.Item.ID }
func (d MenuItemDoc) Payload() map[string]any {
	return structToMap(d.Item)
}
func (d MenuItemDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"parent_id":   map[string]any{"type": "integer"},
		"sequence":    map[string]any{"type": "integer"},
		"name":        map[string]any{"type": "text"},
		"description": map[string]any{"type": "text"},
		"is_summary":  map[string]any{"type": "boolean"},
		"action":      map[string]any{"type": "keyword"},
		"action_id":   map[string]any{"type": "integer"},
		"action_uuid": map[string]any{"type": "keyword"},
	})
}
func (d MenuItemDoc) SearchQuery(term string) map[string]any { return queryStringWildcard(term) }

// MenuTreeDoc adapts model.MenuTree. Search policy: query-string wildcard.
type MenuTreeDoc struct {
	Index string
	Tree  *model.MenuTree
}

func (d MenuTreeDoc) IndexName() string { return d.Index }
func (d MenuTreeDoc) ID() string { return d.Tree.ID }
func (d MenuTreeDoc) Payload() map[string]any { return structToMap(d.Tree) }
func (d MenuTreeDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"node_id":   map[string]any{"type": "integer"},
		"parent_id": map[string]any{"type": "integer"},
		"sequence":  map[string]any{"type": "integer"},
	})
}
func (d MenuTreeDoc) SearchQuery(term string) map[string]any { return queryStringWildcard(term) }

// RoleDoc adapts model.Role. Search policy: query-string wildcard.
type RoleDoc struct {
	Index string
	Role  *model.Role
}

func (d RoleDoc) IndexName() string { return d.Index }
func (d RoleDoc) ID() string { return d.Role.ID }
func (d RoleDoc) Payload() map[string]any { return structToMap(d.Role) }
func (d RoleDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"name":             map[string]any{"type": "text"},
		"tree_uuid":        map[string]any{"type": "keyword"},
		"window_access":    map[string]any{"type": "keyword"},
		"process_access":   map[string]any{"type": "keyword"},
		"form_access":      map[string]any{"type": "keyword"},
		"browser_access":   map[string]any{"type": "keyword"},
		"workflow_access":  map[string]any{"type": "keyword"},
		"dashboard_access": map[string]any{"type": "keyword"},
	})
}
func (d RoleDoc) SearchQuery(term string) map[string]any { return queryStringWildcard(term) }

// WindowDoc adapts model.Window. Search policy: multi_match over
// name^2, description (prose-heavy dictionary object).
type WindowDoc struct {
	Index  string
	Window *model.Window
}

func (d WindowDoc) IndexName() string { return d.Index }
func (d WindowDoc) ID() string { return d.Window.ID }
func (d WindowDoc) Payload() map[string]any { return structToMap(d.Window) }
func (d WindowDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"name":        map[string]any{"type": "text"},
		"description": map[string]any{"type": "text"},
	})
}
func (d WindowDoc) SearchQuery(term string) map[string]any { return multiMatchNameDescription(term) }

// ProcessDoc adapts model.Process. Search policy: multi_match.
type ProcessDoc struct {
	Index   string
	Process *model.Process
}

func (d ProcessDoc) IndexName() string { return d.Index }
func (d ProcessDoc) ID() string { return d.Process.ID }
func (d ProcessDoc) Payload() map[string]any { return structToMap(d.Process) }
func (d ProcessDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"name":        map[string]any{"type": "text"},
		"description": map[string]any{"type": "text"},
	})
}
func (d ProcessDoc) SearchQuery(term string) map[string]any { return multiMatchNameDescription(term) }

// FormDoc adapts model.Form. Search policy: multi_match.
type FormDoc struct {
	Index string
	Form  *model.Form
}

func (d FormDoc) IndexName() string { return d.Index }
func (d FormDoc) ID() string { return d.Form.ID }
func (d FormDoc) Payload() map[string]any { return structToMap(d.Form) }
func (d FormDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"name":        map[string]any{"type": "text"},
		"description": map[string]any{"type": "text"},
	})
}
func (d FormDoc) SearchQuery(term string) map[string]any { return multiMatchNameDescription(term) }

// BrowserDoc adapts model.Browser. Search policy: multi_match.
type BrowserDoc struct {
	Index   string
	Browser *model.Browser
}

func (d BrowserDoc) IndexName() string { return d.Index }
func (d BrowserDoc) ID() string { return d.Browser.ID }
func (d BrowserDoc) Payload() map[string]any { return structToMap(d.Browser) }
func (d BrowserDoc) Mapping() map[string]any {
	return baseMapping(map[string]any{
		"name":        map[string]any{"type": "text"},
		"description": map[string]any{"type": "text"},
	})
}
func (d BrowserDoc) SearchQuery(term string) map[string]any { return multiMatchNameDescription(term) }

// Package query implements the read-side query services: per-entity
// by_id/list lookups with post-fetch normalization, and the
// authorization-filtered menu assembly. Reads flow through the same
// doc.IndexedDocument contract and resolver.Kind chain the CDC pipeline
// writes through.
package query

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/theleeeo/dictionary-indexer/internal/apperr"
	"github.com/theleeeo/dictionary-indexer/internal/doc"
	"github.com/theleeeo/dictionary-indexer/internal/model"
	"github.com/theleeeo/dictionary-indexer/internal/resolver"
	"github.com/theleeeo/dictionary-indexer/internal/store"
)

// Store is the subset of the search-store gateway query services need. It
// embeds resolver.Prober so a Store value can be passed directly wherever
// the resolver's fallback chain needs to probe index existence.
type Store interface {
	resolver.Prober
	GetByID(ctx context.Context, index, id string) (map[string]any, error)
	Search(ctx context.Context, d doc.IndexedDocument, term string, from, size int) (*store.SearchResult, error)
	SearchRaw(ctx context.Context, index string, dsl map[string]any, from, size int) (*store.SearchResult, error)
}

// Params is the audience a read is scoped to, plus pagination.
type Params struct {
	Language       string
	ClientUUID     string
	RoleUUID       string
	UserUUID       string
	DictionaryCode string

	ID   string
	Term string
	From int
	Size int
}

func (p Params) audience() resolver.Audience {
	return resolver.Audience{
		Language:       p.Language,
		ClientUUID:     p.ClientUUID,
		RoleUUID:       p.RoleUUID,
		UserUUID:       p.UserUUID,
		DictionaryCode: p.DictionaryCode,
	}
}

func requireNonBlank(field, val string) error {
	if val == "" {
		return &apperr.ValidationError{Field: field}
	}
	return nil
}

func pageSize(size int) int {
	if size <= 0 {
		return 50
	}
	return size
}

// resolveIndex picks the fallback policy for kind: role records probe
// only the client-scoped index; menu-tree/menu-item lookups probe the
// language-scoped index; every other dictionary kind tries user then
// role.
func resolveIndex(ctx context.Context, p resolver.Prober, kind resolver.Kind, aud resolver.Audience) (string, error) {
	switch kind {
	case resolver.KindRole:
		return resolver.ResolveClientScoped(ctx, p, aud)
	case resolver.KindMenuItem, resolver.KindMenuTree:
		return resolver.ResolveLanguageScoped(ctx, p, kind, aud)
	default:
		return resolver.ResolveAudienceScoped(ctx, p, kind, aud)
	}
}

func decodeInto[T any](source map[string]any) (*T, error) {
	b, err := json.Marshal(source)
	if err != nil {
		return nil, &apperr.BackendError{Err: err}
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, &apperr.BackendError{Err: err}
	}
	return &out, nil
}

// Service is the query-side facade wiring the search-store gateway to the
// per-entity normalization rules and the role-filtered menu assembly.
type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// processAccessFor loads the caller's role and returns its process_access
// UUID set, used to filter window tab processes. A blank role or client id
// means no caller role was supplied, so no filtering applies.
func (svc *Service) processAccessFor(ctx context.Context, p Params) (map[string]bool, error) {
	if p.RoleUUID == "" || p.ClientUUID == "" {
		return nil, nil
	}
	rp := p
	rp.ID = p.RoleUUID
	role, err := svc.Role(ctx, rp)
	if err != nil {
		return nil, err
	}
	return accessSet(role.ProcessAccess), nil
}

// Window returns a normalized window by id, role-filtered on process_access
// when the caller supplied a role.
func (svc *Service) Window(ctx context.Context, p Params) (*model.Window, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	access, err := svc.processAccessFor(ctx, p)
	if err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindWindow, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	w, err := decodeInto[model.Window](src)
	if err != nil {
		return nil, err
	}
	normalizeWindow(w, access)
	return w, nil
}

// ListWindows returns every window in the resolved index matching term,
// each normalized and role-filtered the same way Window is.
func (svc *Service) ListWindows(ctx context.Context, p Params) ([]*model.Window, error) {
	access, err := svc.processAccessFor(ctx, p)
	if err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindWindow, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.WindowDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Window, 0, len(res.Hits))
	for _, h := range res.Hits {
		w, err := decodeInto[model.Window](h)
		if err != nil {
			return nil, err
		}
		normalizeWindow(w, access)
		out = append(out, w)
	}
	return out, nil
}

// Process returns a normalized process by id.
func (svc *Service) Process(ctx context.Context, p Params) (*model.Process, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindProcess, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	pr, err := decodeInto[model.Process](src)
	if err != nil {
		return nil, err
	}
	sortFields(pr.Parameters)
	return pr, nil
}

// ListProcesses returns every process in the resolved index matching term.
func (svc *Service) ListProcesses(ctx context.Context, p Params) ([]*model.Process, error) {
	idx, err := resolveIndex(ctx, svc.store, resolver.KindProcess, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.ProcessDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Process, 0, len(res.Hits))
	for _, h := range res.Hits {
		pr, err := decodeInto[model.Process](h)
		if err != nil {
			return nil, err
		}
		sortFields(pr.Parameters)
		out = append(out, pr)
	}
	return out, nil
}

// Form returns a form by id; no nested sort beyond fields.
func (svc *Service) Form(ctx context.Context, p Params) (*model.Form, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindForm, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	f, err := decodeInto[model.Form](src)
	if err != nil {
		return nil, err
	}
	sortFields(f.Fields)
	return f, nil
}

// ListForms returns every form in the resolved index matching term.
func (svc *Service) ListForms(ctx context.Context, p Params) ([]*model.Form, error) {
	idx, err := resolveIndex(ctx, svc.store, resolver.KindForm, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.FormDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Form, 0, len(res.Hits))
	for _, h := range res.Hits {
		f, err := decodeInto[model.Form](h)
		if err != nil {
			return nil, err
		}
		sortFields(f.Fields)
		out = append(out, f)
	}
	return out, nil
}

// Browser returns a browser by id; fields sorted by sequence.
func (svc *Service) Browser(ctx context.Context, p Params) (*model.Browser, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindBrowser, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	b, err := decodeInto[model.Browser](src)
	if err != nil {
		return nil, err
	}
	sortFields(b.Fields)
	return b, nil
}

// ListBrowsers returns every browser in the resolved index matching term.
func (svc *Service) ListBrowsers(ctx context.Context, p Params) ([]*model.Browser, error) {
	idx, err := resolveIndex(ctx, svc.store, resolver.KindBrowser, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.BrowserDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Browser, 0, len(res.Hits))
	for _, h := range res.Hits {
		b, err := decodeInto[model.Browser](h)
		if err != nil {
			return nil, err
		}
		sortFields(b.Fields)
		out = append(out, b)
	}
	return out, nil
}

// Role returns a role by uuid, client-scoped.
func (svc *Service) Role(ctx context.Context, p Params) (*model.Role, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindRole, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	return decodeInto[model.Role](src)
}

// ListRoles returns every role in the client-scoped index matching term.
func (svc *Service) ListRoles(ctx context.Context, p Params) ([]*model.Role, error) {
	idx, err := resolveIndex(ctx, svc.store, resolver.KindRole, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.RoleDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Role, 0, len(res.Hits))
	for _, h := range res.Hits {
		r, err := decodeInto[model.Role](h)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// MenuItem returns a menu item by id with children recursively sorted by
// sequence.
func (svc *Service) MenuItem(ctx context.Context, p Params) (*model.MenuItem, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindMenuItem, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	m, err := decodeInto[model.MenuItem](src)
	if err != nil {
		return nil, err
	}
	sortMenuItemChildren(m.Children)
	return m, nil
}

// ListMenuItems returns every menu item in the language-scoped index
// matching term.
func (svc *Service) ListMenuItems(ctx context.Context, p Params) ([]*model.MenuItem, error) {
	idx, err := resolveIndex(ctx, svc.store, resolver.KindMenuItem, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.MenuItemDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.MenuItem, 0, len(res.Hits))
	for _, h := range res.Hits {
		m, err := decodeInto[model.MenuItem](h)
		if err != nil {
			return nil, err
		}
		sortMenuItemChildren(m.Children)
		out = append(out, m)
	}
	return out, nil
}

// MenuTree returns a menu tree by id with children recursively sorted by
// sequence.
func (svc *Service) MenuTree(ctx context.Context, p Params) (*model.MenuTree, error) {
	if err := requireNonBlank("id", p.ID); err != nil {
		return nil, err
	}
	idx, err := resolveIndex(ctx, svc.store, resolver.KindMenuTree, p.audience())
	if err != nil {
		return nil, err
	}
	src, err := svc.store.GetByID(ctx, idx, p.ID)
	if err != nil {
		return nil, err
	}
	tr, err := decodeInto[model.MenuTree](src)
	if err != nil {
		return nil, err
	}
	sortMenuTreeChildren(tr.Children)
	return tr, nil
}

// ListMenuTrees returns every menu tree in the language-scoped index
// matching term.
func (svc *Service) ListMenuTrees(ctx context.Context, p Params) ([]*model.MenuTree, error) {
	idx, err := resolveIndex(ctx, svc.store, resolver.KindMenuTree, p.audience())
	if err != nil {
		return nil, err
	}
	res, err := svc.store.Search(ctx, doc.MenuTreeDoc{Index: idx}, p.Term, p.From, pageSize(p.Size))
	if err != nil {
		return nil, err
	}
	out := make([]*model.MenuTree, 0, len(res.Hits))
	for _, h := range res.Hits {
		tr, err := decodeInto[model.MenuTree](h)
		if err != nil {
			return nil, err
		}
		sortMenuTreeChildren(tr.Children)
		out = append(out, tr)
	}
	return out, nil
}

func normalizeWindow(w *model.Window, processAccess map[string]bool) {
	if w == nil {
		return
	}
	sort.SliceStable(w.Tabs, func(i, j int) bool { return w.Tabs[i].Sequence < w.Tabs[j].Sequence })
	for _, t := range w.Tabs {
		sortFields(t.Fields)
		sort.SliceStable(t.Processes, func(i, j int) bool { return t.Processes[i].Name < t.Processes[j].Name })
		if processAccess != nil {
			if t.Process != nil && !processAccess[t.Process.UUID] {
				t.Process = nil
			}
			filtered := t.Processes[:0]
			for _, pr := range t.Processes {
				if processAccess[pr.UUID] {
					filtered = append(filtered, pr)
				}
			}
			t.Processes = filtered
		}
	}
}

func sortFields(fields []*model.Field) {
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Sequence < fields[j].Sequence })
}

func sortMenuItemChildren(items []*model.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Sequence < items[j].Sequence })
	for _, it := range items {
		sortMenuItemChildren(it.Children)
	}
}

func sortMenuTreeChildren(nodes []*model.MenuTree) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Sequence < nodes[j].Sequence })
	for _, n := range nodes {
		sortMenuTreeChildren(n.Children)
	}
}

func accessSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

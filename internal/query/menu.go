package query

import (
	"context"
	"sort"

	"github.com/theleeeo/dictionary-indexer/internal/model"
	"github.com/theleeeo/dictionary-indexer/internal/resolver"
)

// menuPoolPageSize is the page size used to drain the menu-item pool query;
// large enough that a realistic role's menu never truncates.
const menuPoolPageSize = 10000

// AllowedMenu assembles the authorization-filtered menu tree for a role:
// load the role, pull the allowed menu-item pool via a boolean DSL query
// built from the role's access sets, load the role's menu tree, then
// walk and prune.
func (svc *Service) AllowedMenu(ctx context.Context, p Params) ([]*model.MenuItem, error) {
	if err := requireNonBlank("language", p.Language); err != nil {
		return nil, err
	}
	if err := requireNonBlank("client_id", p.ClientUUID); err != nil {
		return nil, err
	}
	if err := requireNonBlank("role_id", p.RoleUUID); err != nil {
		return nil, err
	}

	rp := p
	rp.ID = p.RoleUUID
	role, err := svc.Role(ctx, rp)
	if err != nil {
		return nil, err
	}

	pool, err := svc.menuItemPool(ctx, p, role)
	if err != nil {
		return nil, err
	}
	byNodeID := make(map[int32]*model.MenuItem, len(pool))
	for _, item := range pool {
		byNodeID[item.InternalID] = item
	}

	treeIdx, err := resolver.ResolveLanguageScoped(ctx, svc.store, resolver.KindMenuTree, p.audience())
	if err != nil {
		return nil, err
	}
	treeSrc, err := svc.store.GetByID(ctx, treeIdx, role.TreeUUID)
	if err != nil {
		return nil, err
	}
	tree, err := decodeInto[model.MenuTree](treeSrc)
	if err != nil {
		return nil, err
	}

	nodes := assembleChildren(tree.Children, byNodeID)
	return pruneSummaries(nodes), nil
}

// menuItemPool runs the role-filtered boolean "should" query against the
// menu-item index: is_summary, or an action-kind/access-set pair.
func (svc *Service) menuItemPool(ctx context.Context, p Params, role *model.Role) ([]*model.MenuItem, error) {
	idx, err := resolver.ResolveLanguageScoped(ctx, svc.store, resolver.KindMenuItem, p.audience())
	if err != nil {
		return nil, err
	}
	dsl := roleMenuQuery(role)
	res, err := svc.store.SearchRaw(ctx, idx, dsl, 0, menuPoolPageSize)
	if err != nil {
		return nil, err
	}
	out := make([]*model.MenuItem, 0, len(res.Hits))
	for _, h := range res.Hits {
		item, err := decodeInto[model.MenuItem](h)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// roleMenuQuery builds the boolean "should" clause: a document matches if
// is_summary==true, or it is an action-bearing leaf whose action_uuid sits
// in the role's access set for that action kind.
func roleMenuQuery(role *model.Role) map[string]any {
	actionClause := func(action model.Action, access []string) map[string]any {
		return map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{"term": map[string]any{"action": string(action)}},
					{"terms": map[string]any{"action_uuid": access}},
				},
			},
		}
	}

	should := []map[string]any{
		{"term": map[string]any{"is_summary": true}},
		actionClause(model.ActionWindow, role.WindowAccess),
		actionClause(model.ActionForm, role.FormAccess),
		actionClause(model.ActionBrowser, role.BrowserAccess),
		actionClause(model.ActionProcess, role.ProcessAccess),
		actionClause(model.ActionReport, role.ProcessAccess),
		actionClause(model.ActionWorkflow, role.WorkflowAccess),
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}

// assembleChildren walks tree nodes, keeping only those whose node_id
// resolves in the allowed pool, sorted by the tree node's own sequence
// (which overrides the item's).
func assembleChildren(treeNodes []*model.MenuTree, byNodeID map[int32]*model.MenuItem) []*model.MenuItem {
	sorted := make([]*model.MenuTree, len(treeNodes))
	copy(sorted, treeNodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	out := make([]*model.MenuItem, 0, len(sorted))
	for _, node := range sorted {
		item, ok := byNodeID[node.NodeID]
		if !ok {
			continue
		}
		emitted := *item
		emitted.Sequence = node.Sequence
		emitted.Children = assembleChildren(node.Children, byNodeID)
		out = append(out, &emitted)
	}
	return out
}

// pruneSummaries drops summary nodes whose pruned children contain no
// action-bearing descendant (action_id != 0), recursively.
func pruneSummaries(items []*model.MenuItem) []*model.MenuItem {
	out := make([]*model.MenuItem, 0, len(items))
	for _, item := range items {
		item.Children = pruneSummaries(item.Children)
		if item.IsSummary && !hasActionDescendant(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func hasActionDescendant(item *model.MenuItem) bool {
	if item.ActionID != 0 {
		return true
	}
	for _, c := range item.Children {
		if hasActionDescendant(c) {
			return true
		}
	}
	return false
}

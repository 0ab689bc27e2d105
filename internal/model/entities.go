// Package model defines the dictionary entities projected into the search
// store: menu items, menu trees, roles, and the window/process/form/browser
// dictionary objects. Field shapes follow the wire schema in use by the
// upstream CDC producer; every field is optional since the envelope is
// append-compatible and CDC payloads may omit unset values.
package model

// Envelope is the generic per-topic CDC payload: a single entity, or absent
// for a tombstone/malformed message.
type Envelope[T any] struct {
	Document *T `json:"document"`
}

// Audience carries the optional audience-scoping fields a CDC entity may
// embed: an explicit index-name override, or the language/client/role/user
// components the index-name resolver composes from when no override is
// given. Embedded (not nested) in every projected entity so its JSON fields
// sit alongside the entity's own.
type Audience struct {
	IndexValue     string `json:"index_value,omitempty"`
	Language       string `json:"language,omitempty"`
	ClientID       string `json:"client_id,omitempty"`
	RoleID         string `json:"role_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	DictionaryCode string `json:"dictionary_code,omitempty"`
}

// Action identifies the kind of dictionary object a menu leaf targets.
type Action string

const (
	ActionWindow   Action = "W"
	ActionForm     Action = "X"
	ActionBrowser  Action = "S"
	ActionReport   Action = "R"
	ActionProcess  Action = "P"
	ActionWorkflow Action = "F"
)

// MenuAction is the nested reference a menu leaf carries toward its target
// dictionary object.
type MenuAction struct {
	UUID        string `json:"uuid,omitempty"`
	ID          string `json:"id,omitempty"`
	InternalID  int32  `json:"internal_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// MenuItem is a menu leaf or summary node's presentation payload.
type MenuItem struct {
	Audience
	UUID               string      `json:"uuid,omitempty"`
	ID                 string      `json:"id"`
	InternalID         int32       `json:"internal_id,omitempty"`
	ParentID           int32       `json:"parent_id,omitempty"`
	Sequence           int32       `json:"sequence,omitempty"`
	Name               string      `json:"name,omitempty"`
	Description        string      `json:"description,omitempty"`
	IsSummary          bool        `json:"is_summary,omitempty"`
	IsSalesTransaction bool        `json:"is_sales_transaction,omitempty"`
	IsReadOnly         bool        `json:"is_read_only,omitempty"`
	Action             Action      `json:"action,omitempty"`
	ActionID           int32       `json:"action_id,omitempty"`
	ActionUUID         string      `json:"action_uuid,omitempty"`
	Window             *MenuAction `json:"window,omitempty"`
	Process            *MenuAction `json:"process,omitempty"`
	Form               *MenuAction `json:"form,omitempty"`
	Browser            *MenuAction `json:"browser,omitempty"`
	Workflow           *MenuAction `json:"workflow,omitempty"`
	Children           []*MenuItem `json:"children,omitempty"`
}

// MenuTree is the structural hierarchy (order and parent/child) a role
// walks; it is disjoint from MenuItem's presentation payload.
type MenuTree struct {
	Audience
	UUID       string      `json:"uuid,omitempty"`
	ID         string      `json:"id"`
	InternalID int32       `json:"internal_id,omitempty"`
	NodeID     int32       `json:"node_id,omitempty"`
	ParentID   int32       `json:"parent_id,omitempty"`
	Sequence   int32       `json:"sequence,omitempty"`
	Children   []*MenuTree `json:"children,omitempty"`
}

// Role carries the access sets (entity UUIDs) that gate menu assembly.
type Role struct {
	Audience
	UUID            string   `json:"uuid,omitempty"`
	ID              string   `json:"id"`
	InternalID      int32    `json:"internal_id,omitempty"`
	Name            string   `json:"name,omitempty"`
	TreeUUID        string   `json:"tree_uuid,omitempty"`
	WindowAccess    []string `json:"window_access,omitempty"`
	ProcessAccess   []string `json:"process_access,omitempty"`
	FormAccess      []string `json:"form_access,omitempty"`
	BrowserAccess   []string `json:"browser_access,omitempty"`
	WorkflowAccess  []string `json:"workflow_access,omitempty"`
	DashboardAccess []string `json:"dashboard_access,omitempty"`
}

// Field is a tab/browse/parameter field; flags gate display behavior per the
// wire schema contract.
type Field struct {
	UUID          string `json:"uuid,omitempty"`
	ID            string `json:"id"`
	InternalID    int32  `json:"internal_id,omitempty"`
	Sequence      int32  `json:"sequence,omitempty"`
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	IsDisplayed   bool   `json:"is_displayed,omitempty"`
	IsEditable    bool   `json:"is_editable,omitempty"`
	IsMandatory   bool   `json:"is_mandatory,omitempty"`
	DefaultValue  string `json:"default_value,omitempty"`
	ReferenceUUID string `json:"reference_uuid,omitempty"`
	DependentOn   string `json:"dependent_on,omitempty"`
}

// Tab groups fields and, optionally, a single launchable process within a
// window.
type Tab struct {
	UUID       string        `json:"uuid,omitempty"`
	ID         string        `json:"id"`
	InternalID int32         `json:"internal_id,omitempty"`
	Sequence   int32         `json:"sequence,omitempty"`
	Name       string        `json:"name,omitempty"`
	Fields     []*Field      `json:"fields,omitempty"`
	Process    *MenuAction   `json:"process,omitempty"`
	Processes  []*MenuAction `json:"processes,omitempty"`
}

// Window is a dictionary window object: tabs of fields plus per-tab launch
// processes, filtered at query time by role process_access.
type Window struct {
	Audience
	UUID        string `json:"uuid,omitempty"`
	ID          string `json:"id"`
	InternalID  int32  `json:"internal_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Tabs        []*Tab `json:"tabs,omitempty"`
}

// Process is a dictionary process/report object with ordered parameters.
type Process struct {
	Audience
	UUID        string   `json:"uuid,omitempty"`
	ID          string   `json:"id"`
	InternalID  int32    `json:"internal_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Parameters  []*Field `json:"parameters,omitempty"`
}

// Form is a dictionary (non-tabular) form object.
type Form struct {
	Audience
	UUID        string   `json:"uuid,omitempty"`
	ID          string   `json:"id"`
	InternalID  int32    `json:"internal_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Fields      []*Field `json:"fields,omitempty"`
}

// Browser is a dictionary smart-browser object.
type Browser struct {
	Audience
	UUID        string   `json:"uuid,omitempty"`
	ID          string   `json:"id"`
	InternalID  int32    `json:"internal_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Fields      []*Field `json:"fields,omitempty"`
}

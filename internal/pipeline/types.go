// Package pipeline implements the CDC projection pipeline: a
// table-driven topic dispatcher that decodes each bus message per its
// topic's envelope and applies it through the IndexedDocument contract
// against the search-store gateway. The pipeline holds no state of its
// own — it is a pure per-message decode/apply step; the bus adapter
// (internal/bus) owns the long-running consumer task and the commit
// decision (ack the message only once Apply returns nil, never
// otherwise).
package pipeline

import (
	"context"
	"encoding/json"
)

// Topic is the authoritative kind discriminator: recognized values are
// browser, form, process, window, menu_item, menu_tree, role. Ordering
// is guaranteed only within a topic, mirroring the bus's per-partition
// FIFO guarantee.
type Topic string

const (
	TopicBrowser  Topic = "browser"
	TopicForm     Topic = "form"
	TopicProcess  Topic = "process"
	TopicWindow   Topic = "window"
	TopicMenuItem Topic = "menu_item"
	TopicMenuTree Topic = "menu_tree"
	TopicRole     Topic = "role"
)

// EventType is the mutation kind carried alongside the CDC envelope; the
// bus adapter reads it from the message's event-type header.
type EventType string

const (
	EventNew    EventType = "new"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Handler applies one bus message: decode the topic's envelope and
// dispatch create/update/delete against the search store. Any non-nil
// return means the message must not be committed — a decode failure, an
// unrecognized topic or event type, and a store failure are all treated
// alike: logged and left uncommitted so the bus redelivers on the next
// poll or after restart.
type Handler func(ctx context.Context, topic string, eventType string, payload json.RawMessage) error

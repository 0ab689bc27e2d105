package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/theleeeo/dictionary-indexer/internal/apperr"
	"github.com/theleeeo/dictionary-indexer/internal/doc"
	"github.com/theleeeo/dictionary-indexer/internal/model"
	"github.com/theleeeo/dictionary-indexer/internal/resolver"
)

// Store is the subset of the search-store gateway the pipeline needs to
// apply a projection.
type Store interface {
	Upsert(ctx context.Context, d doc.IndexedDocument) error
	Delete(ctx context.Context, d doc.IndexedDocument) error
}

// Applier dispatches messages through the table mapping each topic name
// to its decoder + apply closure.
type Applier struct {
	store Store
	log   *slog.Logger
}

func NewApplier(s Store, log *slog.Logger) *Applier {
	if log == nil {
		log = slog.Default()
	}
	return &Applier{store: s, log: log}
}

// indexFor picks the entity's target index from its own audience fields:
// an explicit override, or the most specific language/client/role/user
// composition available.
func indexFor(kind resolver.Kind, a model.Audience) string {
	if a.IndexValue != "" {
		return a.IndexValue
	}
	return resolver.MostSpecific(kind, resolver.Audience{
		Language:       a.Language,
		ClientUUID:     a.ClientID,
		RoleUUID:       a.RoleID,
		UserUUID:       a.UserID,
		DictionaryCode: a.DictionaryCode,
	})
}

type applyFunc func(ctx context.Context, a *Applier, eventType string, payload json.RawMessage) error

// dispatchTable maps each recognized CDC topic to its decode+apply closure.
var dispatchTable = map[string]applyFunc{
	string(TopicMenuItem): applyEnvelope(func(a *Applier, m *model.MenuItem) doc.IndexedDocument {
		return doc.MenuItemDoc{Index: indexFor(resolver.KindMenuItem, m.Audience), Item: m}
	}),
	string(TopicMenuTree): applyEnvelope(func(a *Applier, m *model.MenuTree) doc.IndexedDocument {
		return doc.MenuTreeDoc{Index: indexFor(resolver.KindMenuTree, m.Audience), Tree: m}
	}),
	string(TopicRole): applyEnvelope(func(a *Applier, m *model.Role) doc.IndexedDocument {
		return doc.RoleDoc{Index: indexFor(resolver.KindRole, m.Audience), Role: m}
	}),
	string(TopicWindow): applyEnvelope(func(a *Applier, m *model.Window) doc.IndexedDocument {
		return doc.WindowDoc{Index: indexFor(resolver.KindWindow, m.Audience), Window: m}
	}),
	string(TopicProcess): applyEnvelope(func(a *Applier, m *model.Process) doc.IndexedDocument {
		return doc.ProcessDoc{Index: indexFor(resolver.KindProcess, m.Audience), Process: m}
	}),
	string(TopicForm): applyEnvelope(func(a *Applier, m *model.Form) doc.IndexedDocument {
		return doc.FormDoc{Index: indexFor(resolver.KindForm, m.Audience), Form: m}
	}),
	string(TopicBrowser): applyEnvelope(func(a *Applier, m *model.Browser) doc.IndexedDocument {
		return doc.BrowserDoc{Index: indexFor(resolver.KindBrowser, m.Audience), Browser: m}
	}),
}

// applyEnvelope generalizes "decode {document: T?}, no-op if absent,
// dispatch by event type" over any entity kind T.
func applyEnvelope[T any](build func(a *Applier, m *T) doc.IndexedDocument) applyFunc {
	return func(ctx context.Context, a *Applier, eventType string, payload json.RawMessage) error {
		var env model.Envelope[T]
		if err := json.Unmarshal(payload, &env); err != nil {
			return &apperr.DecodeError{Err: err}
		}
		if env.Document == nil {
			return nil
		}

		d := build(a, env.Document)

		switch EventType(eventType) {
		case EventNew:
			return a.store.Upsert(ctx, d)
		case EventUpdate:
			if err := a.store.Delete(ctx, d); err != nil {
				return err
			}
			return a.store.Upsert(ctx, d)
		case EventDelete:
			return a.store.Delete(ctx, d)
		default:
			return fmt.Errorf("unrecognized event type %q", eventType)
		}
	}
}

// Apply decodes and dispatches one CDC message. The caller — the bus
// adapter's consumer task — commits the offset only when Apply returns
// nil; every error here, whatever the cause (unrecognized topic,
// malformed payload, store failure), is logged and left uncommitted so
// at-least-once redelivery re-presents the message later. Apply doesn't
// classify its failures — there is nothing here worth retrying on a
// different schedule than the bus already provides.
func (a *Applier) Apply(ctx context.Context, topic, eventType string, payload json.RawMessage) error {
	// The Kafka-side producer JSON-encodes the message key, so it may
	// arrive wrapped in quotes; strip them before matching.
	eventType = strings.Trim(eventType, `"`)

	fn, ok := dispatchTable[topic]
	if !ok {
		a.log.Warn("unrecognized topic, skipping without committing", "topic", topic)
		return fmt.Errorf("unrecognized topic %q", topic)
	}

	if err := fn(ctx, a, eventType, payload); err != nil {
		a.log.Warn("apply failed, not committing", "topic", topic, "event_type", eventType, "error", err)
		return err
	}

	a.log.Info("applied CDC message", "topic", topic, "event_type", eventType)
	return nil
}

// Handler adapts Apply to the pipeline.Handler signature the bus
// consumer calls.
func (a *Applier) Handler() Handler {
	return a.Apply
}

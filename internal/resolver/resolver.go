// Package resolver implements the index-name resolution protocol: a
// deterministic composition of audience-suffixed index names and an
// ordered fallback-probe chain per entity kind.
package resolver

import (
	"context"
	"strings"

	"github.com/theleeeo/dictionary-indexer/internal/apperr"
)

// Kind is one of the seven recognized dictionary-entity base kinds.
type Kind string

const (
	KindMenuItem Kind = "menu_item"
	KindMenuTree Kind = "menu_tree"
	KindRole     Kind = "role"
	KindWindow   Kind = "window"
	KindProcess  Kind = "process"
	KindForm     Kind = "form"
	KindBrowser  Kind = "browser"
)

// Audience is the (language, client, role, user) tuple that scopes which
// precomputed index a reader sees, plus an optional trailing dictionary
// code.
type Audience struct {
	Language       string
	ClientUUID     string
	RoleUUID       string
	UserUUID       string
	DictionaryCode string
}

// Prober probes whether a named index exists; backed by the search-store
// gateway's exists_index operation.
type Prober interface {
	ExistsIndex(ctx context.Context, name string) (bool, error)
}

// Compose builds the five candidate names for kind/audience, most-specific
// last: default, language, client, role, user — each lowercased,
// underscore-joined, empty segments skipped, with the dictionary code (if
// any) appended last to every candidate.
func Compose(kind Kind, aud Audience) (defaultName, languageName, clientName, roleName, userName string) {
	suffix := func(base string, seg string) string {
		if seg == "" {
			return base
		}
		return base + "_" + strings.ToLower(seg)
	}
	withCode := func(name string) string {
		return suffix(name, aud.DictionaryCode)
	}

	defaultBase := strings.ToLower(string(kind))
	languageBase := suffix(defaultBase, aud.Language)
	clientBase := suffix(languageBase, aud.ClientUUID)
	roleBase := suffix(clientBase, aud.RoleUUID)
	userBase := suffix(roleBase, aud.UserUUID)

	return withCode(defaultBase), withCode(languageBase), withCode(clientBase), withCode(roleBase), withCode(userBase)
}

// chain walks candidates most-specific first, returning the first that
// exists, or IndexNotFound carrying every attempted name.
func chain(ctx context.Context, p Prober, candidates []string) (string, error) {
	var attempted []string
	seen := map[string]bool{}
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		attempted = append(attempted, c)
		ok, err := p.ExistsIndex(ctx, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return "", &apperr.IndexNotFound{Attempted: attempted}
}

// ResolveAudienceScoped implements the per-role dictionary-read policy used
// by window/process/form/browser lookups: try user, then role.
func ResolveAudienceScoped(ctx context.Context, p Prober, kind Kind, aud Audience) (string, error) {
	_, _, _, roleName, userName := Compose(kind, aud)
	candidates := []string{roleName}
	if aud.UserUUID != "" {
		candidates = []string{userName, roleName}
	}
	return chain(ctx, p, candidates)
}

// ResolveClientScoped implements the role-record policy: probe only the
// client-scoped index.
func ResolveClientScoped(ctx context.Context, p Prober, aud Audience) (string, error) {
	_, _, clientName, _, _ := Compose(KindRole, aud)
	return chain(ctx, p, []string{clientName})
}

// ResolveLanguageScoped implements the menu-tree/menu-item lookup policy:
// probe language[_dictionary_code].
func ResolveLanguageScoped(ctx context.Context, p Prober, kind Kind, aud Audience) (string, error) {
	_, languageName, _, _, _ := Compose(kind, aud)
	return chain(ctx, p, []string{languageName})
}

// ResolveLegacy implements the legacy (non-audience) fallback: user, role,
// client, language, default.
func ResolveLegacy(ctx context.Context, p Prober, kind Kind, aud Audience) (string, error) {
	defaultName, languageName, clientName, roleName, userName := Compose(kind, aud)
	return chain(ctx, p, []string{userName, roleName, clientName, languageName, defaultName})
}

// MostSpecific picks the most specific index name composable from the
// audience fields actually supplied, without probing the store: user if a
// user id is present, else role, else client, else language, else default.
// This is the write-path counterpart to the read-path fallback chains
// above — the CDC pipeline always knows exactly which slot an entity
// belongs in from its own embedded audience fields, so no probe is needed.
func MostSpecific(kind Kind, aud Audience) string {
	defaultName, languageName, clientName, roleName, userName := Compose(kind, aud)
	switch {
	case aud.UserUUID != "":
		return userName
	case aud.RoleUUID != "":
		return roleName
	case aud.ClientUUID != "":
		return clientName
	case aud.Language != "":
		return languageName
	default:
		return defaultName
	}
}

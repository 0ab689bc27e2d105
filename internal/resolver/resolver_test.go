package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/dictionary-indexer/internal/apperr"
)

func TestCompose(t *testing.T) {
	aud := Audience{
		Language:       "En_US",
		ClientUUID:     "Client1",
		RoleUUID:       "Role1",
		UserUUID:       "User1",
		DictionaryCode: "AD",
	}

	def, lang, client, role, user := Compose(KindWindow, aud)
	assert.Equal(t, "window_ad", def)
	assert.Equal(t, "window_en_us_ad", lang)
	assert.Equal(t, "window_en_us_client1_ad", client)
	assert.Equal(t, "window_en_us_client1_role1_ad", role)
	assert.Equal(t, "window_en_us_client1_role1_user1_ad", user)
}

func TestCompose_SkipsEmptySegments(t *testing.T) {
	def, lang, client, role, user := Compose(KindRole, Audience{ClientUUID: "c1"})
	assert.Equal(t, "role", def)
	assert.Equal(t, "role", lang)
	assert.Equal(t, "role_c1", client)
	assert.Equal(t, "role_c1", role)
	assert.Equal(t, "role_c1", user)
}

// fakeProber reports existence from a fixed set, recording every probe made
// so tests can assert the chain stops at the first hit.
type fakeProber struct {
	exists map[string]bool
	probed []string
}

func (f *fakeProber) ExistsIndex(_ context.Context, name string) (bool, error) {
	f.probed = append(f.probed, name)
	return f.exists[name], nil
}

func TestResolveAudienceScoped_PrefersUserOverRole(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{
		"window_role1": true,
		"window_role1_user1": true,
	}}
	aud := Audience{RoleUUID: "role1", UserUUID: "user1"}

	name, err := ResolveAudienceScoped(context.Background(), p, KindWindow, aud)
	require.NoError(t, err)
	assert.Equal(t, "window_role1_user1", name)
	assert.Equal(t, []string{"window_role1_user1"}, p.probed)
}

func TestResolveAudienceScoped_FallsBackToRole(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{"window_role1": true}}
	aud := Audience{RoleUUID: "role1", UserUUID: "user1"}

	name, err := ResolveAudienceScoped(context.Background(), p, KindWindow, aud)
	require.NoError(t, err)
	assert.Equal(t, "window_role1", name)
	assert.Equal(t, []string{"window_role1_user1", "window_role1"}, p.probed)
}

func TestResolveAudienceScoped_NotFound(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{}}
	aud := Audience{RoleUUID: "role1"}

	_, err := ResolveAudienceScoped(context.Background(), p, KindWindow, aud)
	var notFound *apperr.IndexNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"window_role1"}, notFound.Attempted)
}

func TestResolveClientScoped(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{"role_client1": true}}
	aud := Audience{ClientUUID: "client1", RoleUUID: "role1"}

	name, err := ResolveClientScoped(context.Background(), p, aud)
	require.NoError(t, err)
	assert.Equal(t, "role_client1", name)
}

func TestResolveLanguageScoped(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{"menu_tree_en_us": true}}
	aud := Audience{Language: "en_US", ClientUUID: "client1"}

	name, err := ResolveLanguageScoped(context.Background(), p, KindMenuTree, aud)
	require.NoError(t, err)
	assert.Equal(t, "menu_tree_en_us", name)
}

func TestResolveLegacy_FallsThroughToLanguage(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{"window_en": true}}
	aud := Audience{Language: "en", ClientUUID: "42"}

	name, err := ResolveLegacy(context.Background(), p, KindWindow, aud)
	require.NoError(t, err)
	assert.Equal(t, "window_en", name)
	assert.Equal(t, []string{"window_en_42", "window_en"}, p.probed)
}

func TestMostSpecific(t *testing.T) {
	assert.Equal(t, "window", MostSpecific(KindWindow, Audience{}))
	assert.Equal(t, "window_en", MostSpecific(KindWindow, Audience{Language: "en"}))
	assert.Equal(t, "window_en_c1", MostSpecific(KindWindow, Audience{Language: "en", ClientUUID: "c1"}))
	assert.Equal(t, "window_en_c1_r1", MostSpecific(KindWindow, Audience{Language: "en", ClientUUID: "c1", RoleUUID: "r1"}))
	assert.Equal(t, "window_en_c1_r1_u1", MostSpecific(KindWindow, Audience{Language: "en", ClientUUID: "c1", RoleUUID: "r1", UserUUID: "u1"}))
}

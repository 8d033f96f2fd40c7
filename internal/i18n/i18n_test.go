package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := Load("../../locales", "")
	require.NoError(t, err)
	return p
}

func TestTextResolvesNestedKeys(t *testing.T) {
	p := loadProvider(t)

	ru := p.Text("buttons.cancel", "ru")
	uz := p.Text("buttons.cancel", "uz")
	assert.NotEmpty(t, ru)
	assert.NotEmpty(t, uz)
	assert.NotEqual(t, ru, uz)
}

func TestTextFallsBackToDefaultLanguage(t *testing.T) {
	p := loadProvider(t)
	assert.Equal(t, DefaultLanguage, p.Fallback())
	assert.Equal(t, p.Text("buttons.cancel", DefaultLanguage), p.Text("buttons.cancel", "de"))
}

func TestConfiguredFallbackLanguage(t *testing.T) {
	p, err := Load("../../locales", "uz")
	require.NoError(t, err)

	assert.Equal(t, "uz", p.Fallback())
	assert.Equal(t, p.Text("buttons.cancel", "uz"), p.Text("buttons.cancel", ""))
	assert.Equal(t, p.Text("buttons.cancel", "uz"), p.Text("buttons.cancel", "de"))
}

func TestLoadRejectsUnknownFallback(t *testing.T) {
	_, err := Load("../../locales", "en")
	assert.Error(t, err)
}

func TestTextReturnsKeyWhenMissing(t *testing.T) {
	p := loadProvider(t)
	assert.Equal(t, "no.such.key", p.Text("no.such.key", "ru"))
}

func TestAllDeduplicates(t *testing.T) {
	p := loadProvider(t)

	// Both locales translate the cancel button differently.
	all := p.All("buttons.cancel")
	assert.Len(t, all, 2)

	seen := map[string]bool{}
	for _, v := range all {
		assert.False(t, seen[v], "duplicate translation %q", v)
		seen[v] = true
	}
}

func TestMatchesAcrossLanguages(t *testing.T) {
	p := loadProvider(t)

	assert.True(t, p.Matches(p.Text("buttons.cancel", "ru"), "buttons.cancel"))
	assert.True(t, p.Matches(p.Text("buttons.cancel", "uz"), "buttons.cancel"))
	assert.False(t, p.Matches("something else", "buttons.cancel"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("ru"))
	assert.True(t, Supported("uz"))
	assert.False(t, Supported("en"))
	assert.False(t, Supported(""))
}

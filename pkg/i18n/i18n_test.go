package i18n

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) *Catalog {
	t.Helper()
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	require.NoError(t, err)
	c, err := Load(sub)
	require.NoError(t, err)
	return c
}

func TestLocalesHaveSameKeys(t *testing.T) {
	c := loadEmbedded(t)
	require.NotZero(t, c.Len("el"))
	assert.Equal(t, c.Len("el"), c.Len("en"))

	for key := range c.messages["el"] {
		_, ok := c.messages["en"][key]
		assert.True(t, ok, "missing en key %s", key)
	}
}

func TestTranslate(t *testing.T) {
	c := loadEmbedded(t)

	en := c.Localizer("en")
	assert.Equal(t, "Your account has been verified", en.T("producer.verified.title"))
	assert.Equal(t,
		`The verification request for "Farm" was rejected. Reason: missing tax id`,
		en.TWithParams("producer.rejected.message", map[string]string{"name": "Farm", "reason": "missing tax id"}),
	)

	fallback := c.Localizer("de")
	assert.Equal(t, "el", fallback.Lang())
	assert.Equal(t, "no.such.key", fallback.T("no.such.key"))
}

func TestFallbackToDefaultLanguage(t *testing.T) {
	c, err := Load(fstest.MapFS{
		"el.json": {Data: []byte(`{"a":{"b":"ελληνικά"}}`)},
		"en.json": {Data: []byte(`{}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "ελληνικά", c.Localizer("en").T("a.b"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(fstest.MapFS{"el.json": {Data: []byte(`{}`)}})
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "el", DetectLanguage("el-GR,el;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("de-DE, en;q=0.5"))
	assert.Equal(t, "el", DetectLanguage(""))
}

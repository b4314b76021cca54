package envcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaParses(t *testing.T) {
	s := DefaultSchema()
	assert.Contains(t, s.Environments, "production")
	assert.NotNil(t, s.Rules["DATABASE_URL"].re)
}

func TestCheckProduction(t *testing.T) {
	s := DefaultSchema()

	vars := map[string]string{
		"NEXT_PUBLIC_APP_URL":                "https://dixis.gr",
		"NEXT_PUBLIC_API_URL":                "https://api.dixis.gr",
		"JWT_SECRET":                         "short",
		"NEXTAUTH_SECRET":                    strings.Repeat("x", 40),
		"STRIPE_SECRET_KEY":                  "sk_live_abcdef",
		"NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY": "pk_live_abcdef",
	}
	r := s.Check("production", vars)

	assert.Equal(t, []string{"SESSION_SECRET"}, r.Missing)
	require.Len(t, r.Invalid, 1)
	assert.Contains(t, r.Invalid[0], "JWT_SECRET")
	assert.False(t, r.OK())
	assert.Contains(t, r.MissingRecommended, "SENTRY_DSN")
}

func TestCheckSecurityIssues(t *testing.T) {
	s := DefaultSchema()

	r := s.Check("development", map[string]string{
		"NEXT_PUBLIC_SITE_URL":   "http://localhost:3000",
		"ADMIN_PASSWORD":         "changeme123",
		"NEXT_PUBLIC_SECRET_KEY": "abc",
		"NEXT_PUBLIC_STRIPE_PUBLIC_KEY": "pk_test",
	})

	assert.Empty(t, r.Missing)
	assert.ElementsMatch(t, []string{
		"ADMIN_PASSWORD appears to contain a weak value",
		"NEXT_PUBLIC_SECRET_KEY appears to expose a secret in a public variable",
	}, r.SecurityIssues)
}

func TestCheckUnknownEnvironmentFallsBack(t *testing.T) {
	r := DefaultSchema().Check("qa", map[string]string{"NEXT_PUBLIC_SITE_URL": "ftp://x"})
	assert.Equal(t, DefaultEnvironment, r.Environment)
	require.Len(t, r.Invalid, 1)
}

func TestParseSchemaErrors(t *testing.T) {
	_, err := ParseSchema([]byte("environments: {}"))
	assert.Error(t, err)

	_, err = ParseSchema([]byte(`
environments:
  development:
    required: [A]
rules:
  A:
    pattern: "("
`))
	assert.Error(t, err)
}

func TestLoadVars(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("A=local\nB='quoted'\n"), 0o600))
	require.NoError(t, os.WriteFile(base, []byte("A=base\n"), 0o600))

	vars, loaded, err := LoadVars([]string{"A=process", "C=process"}, local, base, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Equal(t, []string{local, base}, loaded)
	assert.Equal(t, "base", vars["A"])
	assert.Equal(t, "quoted", vars["B"])
	assert.Equal(t, "process", vars["C"])
}

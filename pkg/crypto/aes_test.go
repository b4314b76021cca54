package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpen(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)
	require.True(t, box.Enabled())

	sealed, err := box.Seal("stripe.secret_key", "sk_live_123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk_live_123")

	plain, err := box.Open("stripe.secret_key", sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_123", plain)

	_, err = box.Open("mail.password", sealed)
	assert.Error(t, err)
}

func TestSealIsRandomised(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)

	a, _ := box.Seal("k", "v")
	b, _ := box.Seal("k", "v")
	assert.NotEqual(t, a, b)
}

func TestNewBoxRejectsBadKeys(t *testing.T) {
	_, err := NewBox("zz")
	assert.Error(t, err)

	_, err = NewBox(strings.Repeat("ab", 16))
	assert.Error(t, err)
}

func TestEmptyKeyBox(t *testing.T) {
	box, err := NewBox("")
	require.NoError(t, err)
	assert.False(t, box.Enabled())

	_, err = box.Seal("k", "v")
	assert.ErrorIs(t, err, ErrNoKey)
	_, err = box.Open("k", "v")
	assert.ErrorIs(t, err, ErrNoKey)
}

package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAllowWindow(t *testing.T) {
	rl := NewLoginRateLimiter(3, 2*time.Minute)
	defer rl.Close()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.Equal(t, 121, rl.RetryAfterSeconds("1.2.3.4"))

	now = now.Add(2*time.Minute + time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestResetAndSweep(t *testing.T) {
	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Close()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	assert.False(t, rl.Allow("a"))
	rl.Reset("a")
	assert.True(t, rl.Allow("a"))

	now = now.Add(2 * time.Minute)
	rl.sweep()
	assert.Equal(t, 0, rl.RetryAfterSeconds("a"))
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	r.Header.Set("X-Real-IP", "9.9.9.9")
	assert.Equal(t, "9.9.9.9", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "8.8.8.8, 10.0.0.2")
	assert.Equal(t, "8.8.8.8", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(120))
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
}

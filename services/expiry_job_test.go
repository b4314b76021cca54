package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAdoptions struct {
	AdoptionService
	calls atomic.Int32
}

func (f *fakeAdoptions) ExpireDue(context.Context) (int, int64, error) {
	f.calls.Add(1)
	return 2, 1, nil
}

type fakeSubscriptions struct {
	SubscriptionService
	err error
}

func (f *fakeSubscriptions) ExpireDue(context.Context) (int64, error) {
	return 0, f.err
}

type fakeSessions struct{ calls atomic.Int32 }

func (f *fakeSessions) DeleteExpired(context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, nil
}

func TestExpiryJobSweepsUntilStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zapcore.DebugLevel)
	adoptions := &fakeAdoptions{}
	sessions := &fakeSessions{}
	subs := &fakeSubscriptions{err: errors.New("database is locked")}

	job := NewExpiryJob(adoptions, subs, sessions, 10*time.Millisecond, zap.New(core))
	job.Start()
	job.Start()

	assert.Eventually(t, func() bool { return adoptions.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	job.Stop()
	job.Stop()

	n := adoptions.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, adoptions.calls.Load(), "no sweeps after Stop")
	assert.Equal(t, n, sessions.calls.Load())

	assert.NotZero(t, logs.FilterMessage("adoptions expired").Len())
	assert.NotZero(t, logs.FilterMessage("subscription sweep failed").Len())
	assert.NotZero(t, logs.FilterMessage("sessions purged").Len())
	assert.Equal(t, 1, logs.FilterMessage("starting").Len())
}

func TestExpiryJobStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)
	job := NewExpiryJob(&fakeAdoptions{}, &fakeSubscriptions{}, &fakeSessions{}, time.Hour, zap.NewNop())
	job.Stop()
}

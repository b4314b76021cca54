package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const expirySweepTimeout = time.Minute

// ExpiryJob periodically expires finished adoptions and subscriptions and
// purges expired sessions.
type ExpiryJob interface {
	// Start runs one sweep immediately, then one per interval.
	Start()
	// Stop halts the loop and waits for a running sweep to finish.
	Stop()
}

// SessionPurger is the part of the session repository the job needs.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type expiryJob struct {
	adoptions     AdoptionService
	subscriptions SubscriptionService
	sessions      SessionPurger
	interval      time.Duration
	log           *zap.Logger

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	done    chan struct{}
}

func NewExpiryJob(
	adoptions AdoptionService,
	subscriptions SubscriptionService,
	sessions SessionPurger,
	interval time.Duration,
	log *zap.Logger,
) ExpiryJob {
	return &expiryJob{
		adoptions:     adoptions,
		subscriptions: subscriptions,
		sessions:      sessions,
		interval:      interval,
		log:           log.Named("expiry"),
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (j *expiryJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return
	}
	j.started = true

	j.log.Info("starting", zap.Duration("interval", j.interval))

	go func() {
		defer close(j.done)

		j.sweep()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.sweep()
			case <-j.stopCh:
				j.log.Info("stopped")
				return
			}
		}
	}()
}

func (j *expiryJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.started {
		return
	}
	select {
	case <-j.stopCh:
	default:
		close(j.stopCh)
	}
	<-j.done
}

func (j *expiryJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), expirySweepTimeout)
	defer cancel()

	expired, released, err := j.adoptions.ExpireDue(ctx)
	if err != nil {
		j.log.Error("adoption sweep failed", zap.Error(err))
	} else if expired > 0 {
		j.log.Info("adoptions expired", zap.Int("expired", expired), zap.Int64("items_released", released))
	}

	subs, err := j.subscriptions.ExpireDue(ctx)
	if err != nil {
		j.log.Error("subscription sweep failed", zap.Error(err))
	} else if subs > 0 {
		j.log.Info("subscriptions expired", zap.Int64("count", subs))
	}

	purged, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.log.Error("session purge failed", zap.Error(err))
	} else if purged > 0 {
		j.log.Debug("sessions purged", zap.Int64("count", purged))
	}
}

package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/tvrdic/voxlink-core/core/events"
)

// refreshMargin is how long before expiry a new credential is minted.
const refreshMargin = 30 * time.Second

// SessionCreator mints grants; *Client satisfies it.
type SessionCreator interface {
	CreateSession(ctx context.Context, config events.SessionConfig) (*Grant, error)
}

// Refresher re-mints a session credential before it expires. It is scoped to
// the lifetime of an open connection: Stop must be called on session close
// so a dangling refresh never writes into a closed session.
type Refresher struct {
	client  SessionCreator
	stopped sync.Once
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRefresher starts the refresh loop immediately. onGrant is invoked with
// every freshly minted grant, on the refresher's goroutine.
func NewRefresher(ctx context.Context, client SessionCreator, initial *Grant, onGrant func(*Grant)) *Refresher {
	ctx, cancel := context.WithCancel(ctx)
	r := &Refresher{
		client: client,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go r.run(ctx, initial, onGrant)
	return r
}

func (r *Refresher) run(ctx context.Context, grant *Grant, onGrant func(*Grant)) {
	defer close(r.done)

	current := grant
	for {
		wait := current.ExpiresIn(time.Now()) - refreshMargin
		if wait <= 0 {
			// No expiry on the grant, nothing to refresh.
			if current.ClientSecret.ExpiresAt == 0 {
				return
			}
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		refreshed, err := r.client.CreateSession(ctx, current.SessionConfig)
		if err != nil {
			logger.Warn("failed to refresh session credential", "error", err)
			return
		}
		current = refreshed
		if onGrant != nil {
			onGrant(refreshed)
		}
	}
}

// Stop cancels the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.stopped.Do(func() {
		r.cancel()
		<-r.done
	})
}

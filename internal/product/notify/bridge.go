package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/product/model"
	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
)

// Bridge publishes a ProductsChangedEvent for every store change. Publishing happens
// in the background; failures are logged and never reach the store.
type Bridge struct {
	publisher messaging.Publisher
	subject   string
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	// mu orders wg.Add against Close so Wait never races a new publish.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewBridge creates a Bridge. An empty subject means messaging.ProductsChangedSubject.
func NewBridge(publisher messaging.Publisher, subject string, timeout time.Duration, logger *slog.Logger) *Bridge {
	return &Bridge{
		publisher: publisher,
		subject:   subject,
		timeout:   timeout,
		logger:    logger.With("component", "bridge"),
		now:       time.Now,
	}
}

// Handle is a store.Listener.
func (b *Bridge) Handle(c store.Change) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	event := events.ProductsChangedEvent{
		Op:         string(c.Op),
		Count:      len(c.Products),
		ProductIDs: model.IDs(c.Products),
		OccurredAt: b.now().UTC(),
	}.WithSubject(b.subject)

	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.publisher.Publish(ctx, event); err != nil {
			b.logger.Error("Failed to publish products changed event", "op", event.Op, "subject", event.Subject(), "error", err)
			return
		}
		b.logger.Debug("Published products changed event", "op", event.Op, "subject", event.Subject())
	}()
}

// Close stops accepting changes and waits for in-flight publishes or ctx expiry.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

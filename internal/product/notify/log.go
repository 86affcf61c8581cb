// Package notify contains store listeners that report collection changes to the outside world.
package notify

import (
	"log/slog"

	"github.com/abgdnv/storefront/internal/product/store"
)

// LogListener writes one audit line per change.
func LogListener(logger *slog.Logger) store.Listener {
	logger = logger.With("component", "audit")
	return func(c store.Change) {
		logger.Info("Product collection changed", "op", string(c.Op), "count", len(c.Products))
	}
}

// Package nats connects to NATS JetStream and publishes messaging events through it.
package nats

import (
	"fmt"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NewClient dials the NATS server described by cfg.
func NewClient(cfg config.NATSConfig) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Url, nats.Timeout(cfg.Timeout), nats.Name("storefront"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NewJetStreamContext creates a JetStream handle; the connection is closed on failure.
func NewJetStreamContext(nc *nats.Conn) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nil
}

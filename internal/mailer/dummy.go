package mailer

import (
	"context"
	"sync"
)

// DummyProvider records sent messages instead of calling the provider.
// Used in development when no API key is configured, and in tests.
type DummyProvider struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

var _ Provider = (*DummyProvider)(nil)

func (d *DummyProvider) Send(_ context.Context, msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Sent = append(d.Sent, msg)
	return nil
}

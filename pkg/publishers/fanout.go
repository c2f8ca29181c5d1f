package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// FailureHook observes a failed delivery.
type FailureHook func(p Publisher, err error)

// FanoutOption tunes a Fanout.
type FanoutOption func(*Fanout)

// WithFailureHook registers a callback invoked for every failed delivery.
func WithFailureHook(hook FailureHook) FanoutOption {
	return func(f *Fanout) { f.onFailure = hook }
}

// Fanout dispatches events to all configured publishers.
type Fanout struct {
	publishers []Publisher
	onFailure  FailureHook
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher, opts ...FanoutOption) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	f := &Fanout{publishers: cp}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Publish forwards the event to every registered publisher.
// It returns the number of publishers that successfully handled the event.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, p := range f.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			if f.onFailure != nil {
				f.onFailure(p, err)
			}
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers each snapshot event to every configured sink. Sinks are
// independent: one failing does not stop delivery to the rest.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a dispatcher over the given publishers, dropping nils.
func NewFanout(pubs []Publisher) *Fanout {
	kept := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		kept = append(kept, p)
	}
	return &Fanout{publishers: kept}
}

// Publish sends the event to every sink and reports how many accepted it.
// Failures are joined into one error so the caller can log partial delivery
// without losing per-sink detail.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	delivered := 0
	for _, p := range f.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

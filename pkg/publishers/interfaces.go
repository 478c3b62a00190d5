package publishers

import "context"

// Publisher is one downstream sink for snapshot events. Implementations are
// built once at startup from the registry file and reused across runs.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Package goalstore adapts the external goal store for this process.
//
// Goals are owned and mutated elsewhere; this package only reads them and
// surfaces change notifications. It never writes goal data.
package goalstore

import (
	"context"

	"github.com/okian/glance/internal/domain/model"
)

// Reader exposes the goal store's read-all operation.
type Reader interface {
	ReadAll(ctx context.Context) ([]model.Goal, error)
}

// Subscription delivers goal-change notifications until closed.
type Subscription interface {
	// Events returns the change stream. The channel closes when the
	// subscription is closed.
	Events() <-chan model.ChangeEvent

	// Close stops the subscription and closes the event channel.
	Close() error
}

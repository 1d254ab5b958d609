package publisher

import (
	"context"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

// EventPublisher fans engine events out to the subscribable feed consumed by
// presentation, notification and audit collaborators.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *domain.Event) error
}

package task

import (
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/mmmtweb2/TodoApp/events"
)

// busPublisher publishes task events on the mono event bus. Publishing is
// best-effort: failures are logged and never fail the operation.
type busPublisher struct {
	bus    mono.EventBus
	logger types.Logger
}

var _ EventPublisher = (*busPublisher)(nil)

func (p *busPublisher) TaskCreated(event events.TaskCreatedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.TaskCreatedV1.Publish(p.bus, event, nil); err != nil {
		p.warn("TaskCreated", event.TaskID, err)
	}
}

func (p *busPublisher) TaskUpdated(event events.TaskUpdatedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.TaskUpdatedV1.Publish(p.bus, event, nil); err != nil {
		p.warn("TaskUpdated", event.TaskID, err)
	}
}

func (p *busPublisher) TaskShared(event events.TaskSharedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.TaskSharedV1.Publish(p.bus, event, nil); err != nil {
		p.warn("TaskShared", event.TaskID, err)
	}
}

func (p *busPublisher) SharePermissionChanged(event events.SharePermissionChangedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.SharePermissionChangedV1.Publish(p.bus, event, nil); err != nil {
		p.warn("SharePermissionChanged", event.TaskID, err)
	}
}

func (p *busPublisher) ShareRevoked(event events.ShareRevokedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.ShareRevokedV1.Publish(p.bus, event, nil); err != nil {
		p.warn("ShareRevoked", event.TaskID, err)
	}
}

func (p *busPublisher) TaskDeleted(event events.TaskDeletedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.TaskDeletedV1.Publish(p.bus, event, nil); err != nil {
		p.warn("TaskDeleted", event.TaskID, err)
	}
}

func (p *busPublisher) warn(event, taskID string, err error) {
	p.logger.Warn("Failed to publish event", "event", event, "task_id", taskID, "error", err)
}

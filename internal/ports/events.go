package ports

import "context"

// EventPublisher emits side-channel notifications. Publication is at-most-once
// from the saga's point of view: failures are logged by the caller and never
// change the provisioning outcome.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

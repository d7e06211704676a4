package events

import "context"

// Sink delivers events to a downstream destination (HTTP, SQS, SNS, Pub/Sub).
type Sink interface {
	ID() string
	Type() string
	Deliver(ctx context.Context, evt Event) error
}

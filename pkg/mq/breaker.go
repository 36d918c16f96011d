package mq

import (
	"context"

	"maturity-dashboard/pkg/circuitbreaker"
)

// ContextPublisher publishes payloads with trace propagation.
type ContextPublisher interface {
	PublishWithContext(ctx context.Context, routingKey string, payload any) error
}

// BreakerPublisher fails fast while the broker keeps rejecting publishes.
type BreakerPublisher struct {
	next ContextPublisher
	cb   *circuitbreaker.CircuitBreaker
}

func NewBreakerPublisher(next ContextPublisher, cb *circuitbreaker.CircuitBreaker) *BreakerPublisher {
	return &BreakerPublisher{next: next, cb: cb}
}

func (p *BreakerPublisher) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	return p.cb.Execute(func() error {
		return p.next.PublishWithContext(ctx, routingKey, payload)
	})
}

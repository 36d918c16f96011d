package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"maturity-dashboard/pkg/metrics"
	"maturity-dashboard/pkg/trace"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// ErrPoisonMessage marks a message that can never be processed. The consumer
// dead-letters it instead of requeueing.
var ErrPoisonMessage = errors.New("poison message")

// Poison wraps err with ErrPoisonMessage.
func Poison(err error) error {
	return fmt.Errorf("%w: %w", ErrPoisonMessage, err)
}

type Consumer struct {
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	conn       *amqp091.Connection
	logger     *zap.Logger
}

// NewConsumer creates a consumer for a specific routing key.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c := &Consumer{
		conn:       conn,
		channel:    ch,
		routingKey: routingKey,
		logger:     logger,
	}
	if err := c.declare(queueName); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)
	return c, nil
}

func (c *Consumer) declare(queueName string) error {
	if err := DeclareExchange(c.channel); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := DeclareDLQExchange(c.channel); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(c.channel, queueName, c.routingKey); err != nil {
		return err
	}

	q, err := c.channel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		deadLetterArgs(),
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, c.routingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	c.queue = q
	return nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// IsConnected reports whether the underlying connection is open.
func (c *Consumer) IsConnected() bool {
	return c != nil && c.conn != nil && !c.conn.IsClosed()
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming consumes messages until ctx is cancelled or the delivery
// channel closes. It blocks and should be called in a goroutine.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for queue %s", c.queue.Name)
			}
			c.handleDelivery(ctx, msg)
		}
	}
}

// handleDelivery 保证每条消息都会被 ack、nack 或 reject
func (c *Consumer) handleDelivery(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()
	ctx = trace.WithContext(ctx, traceIDOf(msg))
	logger := c.logger.With(
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
		zap.String("trace_id", trace.FromContext(ctx)),
	)

	logger.Debug("Received message", zap.Int("message_size", len(msg.Body)))

	// Panic 恢复：确保即使 handler panic 也能正确处理消息
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panic recovered", zap.Any("panic", r))
			if err := msg.Nack(false, true); err != nil {
				logger.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
	}()

	err := c.handler(ctx, msg.Body)
	metrics.RecordMQConsumeLatency(c.routingKey, c.queue.Name, time.Since(start))

	switch {
	case err == nil:
		if err := msg.Ack(false); err != nil {
			logger.Error("Failed to ack message", zap.Error(err))
			return
		}
		logger.Debug("Message processed successfully")
	case errors.Is(err, ErrPoisonMessage):
		// 无法处理的消息 → 不重新入队，由 DLX 接收
		logger.Warn("Dead-lettering poison message", zap.Error(err))
		if err := msg.Reject(false); err != nil {
			logger.Error("Failed to reject message", zap.Error(err))
		}
	default:
		// 业务失败 → 拒绝消息并重新入队，让 MQ 重试
		logger.Error("Handler error", zap.Error(err))
		if err := msg.Nack(false, true); err != nil {
			logger.Error("Failed to nack message", zap.Error(err))
		}
	}
}

func traceIDOf(msg amqp091.Delivery) string {
	if v, ok := msg.Headers[TraceHeader].(string); ok && v != "" {
		return v
	}
	return trace.GenerateTraceID()
}

package service

import (
	"context"
	"encoding/json"

	"buildhub/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NewsletterWorker consumes newsletter jobs from RabbitMQ and sends them by email
type NewsletterWorker struct {
	newsletters NewsletterService
	rabbitMQ    *util.RabbitMQClient
}

func NewNewsletterWorker(newsletters NewsletterService, rabbitMQ *util.RabbitMQClient) *NewsletterWorker {
	return &NewsletterWorker{newsletters: newsletters, rabbitMQ: rabbitMQ}
}

// Run consumes until ctx is cancelled or the channel closes. Without
// RabbitMQ it returns immediately.
func (w *NewsletterWorker) Run(ctx context.Context) error {
	if w.rabbitMQ == nil {
		return nil
	}
	if err := w.rabbitMQ.DeclareQueue(NewsletterExchange, NewsletterQueue, NewsletterRoutingKey); err != nil {
		return err
	}
	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}
	if err := channel.Qos(10, 0, false); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		NewsletterQueue,
		"newsletter_worker",
		false, // auto-ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	zap.L().Info("newsletter worker started")
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("newsletter worker stopped")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				zap.L().Warn("newsletter queue closed")
				return nil
			}
			w.handle(msg)
		}
	}
}

func (w *NewsletterWorker) handle(msg amqp.Delivery) {
	var job NewsletterJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		zap.L().Error("dropping malformed newsletter job", zap.Error(err))
		msg.Nack(false, false)
		return
	}
	// delivery errors are already logged; a failed email is not requeued
	_ = w.newsletters.Deliver(job)
	msg.Ack(false)
}

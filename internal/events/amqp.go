package events

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/pkg/mq"
)

// AMQPPublisher публикует события в RabbitMQ topic exchange
type AMQPPublisher struct {
	pub *mq.Publisher
}

// NewAMQPPublisher подключается к брокеру и объявляет exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	pub, err := mq.NewPublisher(url, exchange)
	if err != nil {
		return nil, fmt.Errorf("events: connect publisher: %w", err)
	}
	return &AMQPPublisher{pub: pub}, nil
}

// Publish публикует событие с routing key, равным его типу
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	return p.pub.PublishJSON(ctx, event.Type, event)
}

// Close закрывает соединение с брокером
func (p *AMQPPublisher) Close() error {
	return p.pub.Close()
}

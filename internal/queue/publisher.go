package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const EventProductCreated = "product.created"

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// PublishProductCreated announces a product whose images are waiting to be
// scored.
func (p *Publisher) PublishProductCreated(ctx context.Context, productID string, images int) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]any{
			"type":      EventProductCreated,
			"productId": productID,
			"images":    images,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish %s: %w", EventProductCreated, err)
	}
	return nil
}

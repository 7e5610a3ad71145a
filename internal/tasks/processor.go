package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trustgate/internal/queue"
)

// Trigger starts a reconciliation tick out of schedule.
type Trigger interface {
	Trigger()
}

type Processor struct {
	trigger Trigger
	logger  zerolog.Logger
}

type EventPayload struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
}

func NewProcessor(trigger Trigger, logger zerolog.Logger) *Processor {
	return &Processor{
		trigger: trigger,
		logger:  logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload EventPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case queue.EventProductCreated:
		return p.handleProductCreated(ctx, payload)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown event type")
		return nil
	}
}

// decodePayload only sees string values; Redis returns every stream field
// as a string.
func decodePayload(values map[string]interface{}, out *EventPayload) error {
	strs := make(map[string]string, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			strs[k] = s
		}
	}
	bytes, err := json.Marshal(strs)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleProductCreated(_ context.Context, payload EventPayload) error {
	if payload.ProductID == "" {
		return fmt.Errorf("%s event without productId", queue.EventProductCreated)
	}
	p.logger.Debug().Str("product_id", payload.ProductID).Msg("product created, triggering reconcile")
	p.trigger.Trigger()
	return nil
}

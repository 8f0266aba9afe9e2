// Package accounts reacts to account lifecycle events published by the identity service.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-basket/internal/basket"
	kafkax "github.com/ariefcatur/go-basket/internal/kafka"
	"github.com/ariefcatur/go-basket/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type BasketDeleter interface {
	DeleteBasket(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	Baskets     BasketDeleter
	Redis       *redis.Client
	ServiceName string
	Log         *zap.Logger
}

// HandleUserDeleted drops the durable basket of a deleted user. Redeliveries of the
// same event are skipped.
func (s *Service) HandleUserDeleted(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.Header(m, "x-event-type"); t != "" && t != EventUserDeleted {
		return nil
	}
	var env basket.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Warn("skipping undecodable message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != EventUserDeleted {
		return nil
	}

	p, err := kafkax.UnwrapPayload[UserDeletedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("skipping bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if p.UserID == "" {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	first, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		s.Log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}

	deleted, err := s.Baskets.DeleteBasket(ctx, p.UserID)
	if err != nil {
		// the consumer hands the same message back; it must not look like a duplicate then
		_ = s.Redis.Del(ctx, dkey).Err()
		return err
	}
	s.Log.Info("user basket removed",
		zap.String("user_id", p.UserID), zap.Bool("existed", deleted), zap.String("trace_id", env.TraceID))
	return nil
}

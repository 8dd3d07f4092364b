package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/models"
)

// Publisher pushes a realtime message to every socket a user has open.
type Publisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// UserChannel is the Redis pub/sub channel the websocket hub subscribes to
// for userID.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

type RedisNotifier struct {
	redis *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{redis: client}
}

func (n *RedisNotifier) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("failed to encode update")
		return
	}
	if err := n.redis.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("type", msg.Type).Msg("failed to publish update")
	}
}

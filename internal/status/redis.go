package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Flowgrid/internal/domain"
)

const publishTimeout = 2 * time.Second

// Channel возвращает имя Redis-канала для статусов узлов данного типа.
func Channel(nodeType domain.NodeType) string {
	return fmt.Sprintf("flowgrid.%s.status", strings.ToLower(string(nodeType)))
}

// RedisPublisher публикует события статуса в Redis pub/sub.
//
// Каждый тип узла получает свой канал, чтобы редактор подписывался
// только на типы, присутствующие в открытом workflow.
type RedisPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisPublisher создаёт RedisPublisher поверх готового клиента.
func NewRedisPublisher(client *redis.Client, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

// Publish реализует Publisher. Ошибки публикации логируются и
// проглатываются.
func (p *RedisPublisher) Publish(ctx context.Context, nodeType domain.NodeType, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("marshal status event", "node_id", ev.NodeID, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.client.Publish(pubCtx, Channel(nodeType), payload).Err(); err != nil {
		p.logger.Warn("publish status event",
			"channel", Channel(nodeType),
			"node_id", ev.NodeID,
			"status", ev.Status,
			"error", err,
		)
	}
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/techcity/backoffice/internal/domain/shared"
	"github.com/techcity/backoffice/internal/infrastructure/config"
)

// channelPrefix namespaces branch notification channels in Redis
const channelPrefix = "backoffice:branch:"

// Notification is the wire format pushed to branch subscribers
type Notification struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	BranchID      string    `json:"branch_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RedisNotifier fans domain events out to per-branch Redis pub/sub channels
// so branch dashboards see activity as it happens. Delivery is best effort;
// a failed publish is logged and never fails the originating operation.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a notifier with its own Redis connection
func NewRedisNotifier(cfg *config.RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{client: client, logger: logger}, nil
}

// NewRedisNotifierWithClient creates a notifier sharing an existing client
func NewRedisNotifierWithClient(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Channel returns the pub/sub channel name for a branch
func Channel(branchID string) string {
	return channelPrefix + branchID
}

// Handle publishes the event to the channel of the branch it belongs to
func (n *RedisNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(Notification{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID().String(),
		BranchID:      event.BranchID().String(),
		OccurredAt:    event.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := Channel(event.BranchID().String())
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Warn("failed to publish branch notification",
			zap.String("channel", channel),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
	return nil
}

// EventTypes returns an empty slice: the notifier receives every event
func (n *RedisNotifier) EventTypes() []string {
	return nil
}

// Close releases the Redis connection
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

var _ shared.EventHandler = (*RedisNotifier)(nil)

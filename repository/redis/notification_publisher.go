package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/compliance/domain"
)

// NotificationPublisher fans mutation outcomes out on a per-owner pub/sub channel.
type NotificationPublisher struct {
	client redislib.UniversalClient
	prefix string
}

func NewNotificationPublisher(client redislib.UniversalClient) *NotificationPublisher {
	return &NotificationPublisher{client: client, prefix: "notifications:"}
}

// Channel returns the channel name subscribers of owner listen on.
func (p *NotificationPublisher) Channel(owner domain.Identity) string {
	return p.prefix + owner.UserID
}

func (p *NotificationPublisher) Notify(ctx context.Context, owner domain.Identity, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.Channel(owner), payload).Err()
}

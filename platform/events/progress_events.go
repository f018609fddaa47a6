package events

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
)

const DefaultProgressChannel = "course:progress"

// LocalSink receives relayed events on this instance.
type LocalSink interface {
	Send(ctx context.Context, requestID string, event models.ProgressEvent)
}

// ProgressPublisher relays progress events over redis pub/sub so that the
// instance holding a client's websocket delivers it, whichever instance runs
// the job.
type ProgressPublisher struct {
	redisClient *redis.Client
	channel     string
}

func NewProgressPublisher(redisClient *redis.Client, channel string) *ProgressPublisher {
	if channel == "" {
		channel = DefaultProgressChannel
	}
	return &ProgressPublisher{redisClient: redisClient, channel: channel}
}

// Send publishes the event. Failures are logged and dropped like any other
// progress delivery failure.
func (p *ProgressPublisher) Send(ctx context.Context, requestID string, event models.ProgressEvent) {
	data, err := json.Marshal(models.ProgressEnvelope{RequestID: requestID, Event: event})
	if err != nil {
		logging.Logger.Error("fail PublishProgress", "error", err)
		return
	}
	if err := p.redisClient.Publish(ctx, p.channel, data).Err(); err != nil {
		logging.Logger.Error("fail PublishProgress", "requestId", requestID, "error", err)
	}
}

func (p *ProgressPublisher) Subscribe(ctx context.Context) (<-chan models.ProgressEnvelope, error) {
	pubsub := p.redisClient.Subscribe(ctx, p.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		logging.Logger.Error("fail SubscribeProgress", "error", err)
		return nil, err
	}
	ch := make(chan models.ProgressEnvelope, 100)

	go func() {
		defer close(ch)
		defer func() {
			if err := pubsub.Close(); err != nil {
				logging.Logger.Error("fail SubscribeProgress", "error", err)
			}
		}()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env models.ProgressEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logging.Logger.Error("Failed to unmarshal progress event", "error", err)
					continue
				}

				select {
				case ch <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Forward delivers every relayed event to sink until ctx ends.
func (p *ProgressPublisher) Forward(ctx context.Context, sink LocalSink) error {
	ch, err := p.Subscribe(ctx)
	if err != nil {
		return err
	}
	logging.Logger.Info("forwarding progress events", "channel", p.channel)
	for env := range ch {
		sink.Send(ctx, env.RequestID, env.Event)
	}
	return nil
}

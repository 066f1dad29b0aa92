package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "marketlevy/pkg/platform/audit"
)

// KafkaBroker produces outbox entries to a single topic keyed by aggregate
// id, so events for one trader stay ordered within a partition.
type KafkaBroker struct {
	client *kgo.Client
	topic  string
}

// NewKafkaBroker connects to brokers and ensures the topic exists.
func NewKafkaBroker(ctx context.Context, brokers []string, topic string) (*KafkaBroker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), topic); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaBroker{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, adm *kadm.Client, topic string) error {
	resp, err := adm.CreateTopics(ctx, 3, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (b *KafkaBroker) Publish(ctx context.Context, entry audit.OutboxEntry) error {
	record := &kgo.Record{
		Topic: b.topic,
		Key:   []byte(entry.AggregateID),
		Value: entry.Payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(entry.EventType)},
			{Key: "outbox_id", Value: []byte(entry.ID.String())},
		},
	}
	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", b.topic, err)
	}
	return nil
}

func (b *KafkaBroker) Close() error {
	b.client.Close()
	return nil
}

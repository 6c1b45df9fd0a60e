package partner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaProducer writes messages to a single topic.
type KafkaProducer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger) (*KafkaProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no broker configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaProducer{client: client, topic: topic, logger: logger}, nil
}

// EnsureTopic creates the topic when missing.
func (p *KafkaProducer) EnsureTopic(ctx context.Context, partitions int32) error {
	if partitions <= 0 {
		partitions = 1
	}
	adm := kadm.NewClient(p.client)
	resps, err := adm.CreateTopics(ctx, partitions, -1, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resps {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	p.logger.InfoContext(ctx, "partner topic ready", "topic", p.topic, "partitions", partitions)
	return nil
}

func (p *KafkaProducer) Produce(ctx context.Context, key, value []byte) error {
	res := p.client.ProduceSync(ctx, &kgo.Record{Key: key, Value: value})
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaProducer) Close() {
	p.client.Close()
}

// Record is a produced message kept by InMemoryProducer.
type Record struct {
	Key   string
	Value []byte
}

// InMemoryProducer keeps produced messages. Used when no broker is configured.
type InMemoryProducer struct {
	mu      sync.Mutex
	records []Record
}

func NewInMemoryProducer() *InMemoryProducer {
	return &InMemoryProducer{}
}

func (p *InMemoryProducer) Produce(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, Record{Key: string(key), Value: append([]byte(nil), value...)})
	return nil
}

func (p *InMemoryProducer) Records() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Record(nil), p.records...)
}

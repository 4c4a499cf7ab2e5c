// Package kafka carries outbox events onto the broker. The outbox worker is
// the only writer; consumers downstream react to booking and schedule changes.
package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// Producer publishes event envelopes synchronously. Synchronous sends let the
// outbox worker ack a record only after the broker accepted it.
type Producer struct {
	sync sarama.SyncProducer
}

// NewProducer connects a sync producer with exactly-once-per-send settings.
// Records are keyed by aggregate id, so a listing's or booking's events stay
// ordered within their partition.
func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	// Idempotent production requires a single in-flight request per broker.
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

// Publish sends one envelope and blocks until the broker confirms it.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

package repository

import (
	"context"
	"time"

	"MarketCoach/internal/domain/models"
	domrepo "MarketCoach/internal/domain/repository"
)

// producer is the part of pkg/kafka.Producer the publisher needs.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// SnapshotEvent is the message written for every freshly computed snapshot.
type SnapshotEvent struct {
	Bucket      string           `json:"bucket"`
	PublishedAt time.Time        `json:"published_at"`
	Snapshot    *models.Snapshot `json:"snapshot"`
}

// RegimeEvent is the message written for every regime computation.
type RegimeEvent struct {
	PublishedAt time.Time            `json:"published_at"`
	Report      *models.RegimeReport `json:"report"`
}

// KafkaPublisher implements domain.repository.Publisher. Snapshots are keyed
// by symbol so one symbol's history stays on one partition.
type KafkaPublisher struct {
	producer      producer
	snapshotTopic string
	regimeTopic   string
	now           func() time.Time
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(p producer, snapshotTopic, regimeTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, snapshotTopic: snapshotTopic, regimeTopic: regimeTopic, now: time.Now}
}

func (k *KafkaPublisher) PublishSnapshot(ctx context.Context, bucket string, s *models.Snapshot) error {
	return k.producer.Publish(ctx, k.snapshotTopic, []byte(s.Symbol), SnapshotEvent{
		Bucket:      bucket,
		PublishedAt: k.now().UTC(),
		Snapshot:    s,
	})
}

func (k *KafkaPublisher) PublishRegime(ctx context.Context, r *models.RegimeReport) error {
	if k.regimeTopic == "" {
		return nil
	}
	return k.producer.Publish(ctx, k.regimeTopic, []byte(r.Meta.Bucket), RegimeEvent{
		PublishedAt: k.now().UTC(),
		Report:      r,
	})
}

func (k *KafkaPublisher) Close() error { return k.producer.Close() }

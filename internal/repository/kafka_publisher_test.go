package repository

import (
	"context"
	"testing"
	"time"

	"MarketCoach/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducer struct{ mock.Mock }

func (m *mockProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	return m.Called(topic, string(key), value).Error(0)
}

func (m *mockProducer) Close() error { return m.Called().Error(0) }

func TestPublishSnapshotKeyedBySymbol(t *testing.T) {
	p := &mockProducer{}
	pub := NewKafkaPublisher(p, "mcm.snapshots", "mcm.regimes")
	at := time.Date(2025, 3, 5, 15, 7, 0, 0, time.UTC)
	pub.now = func() time.Time { return at }

	snap := &models.Snapshot{Symbol: "AAPL"}
	p.On("Publish", "mcm.snapshots", "AAPL", SnapshotEvent{Bucket: "2025-03-05:10:05", PublishedAt: at, Snapshot: snap}).Return(nil).Once()

	require.NoError(t, pub.PublishSnapshot(context.Background(), "2025-03-05:10:05", snap))
	p.AssertExpectations(t)
}

func TestPublishRegime(t *testing.T) {
	p := &mockProducer{}
	pub := NewKafkaPublisher(p, "s", "r")
	p.On("Publish", "r", "b1", mock.AnythingOfType("RegimeEvent")).Return(nil).Once()
	p.On("Close").Return(nil)

	require.NoError(t, pub.PublishRegime(context.Background(), &models.RegimeReport{Meta: models.SnapshotMeta{Bucket: "b1"}}))
	require.NoError(t, pub.Close())
	p.AssertExpectations(t)
}

func TestPublishRegimeDisabledWithoutTopic(t *testing.T) {
	p := &mockProducer{}
	pub := NewKafkaPublisher(p, "s", "")
	assert.NoError(t, pub.PublishRegime(context.Background(), &models.RegimeReport{}))
	p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

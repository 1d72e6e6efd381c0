package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/testutil"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() CommitEvent {
	return CommitEvent{
		AccountID: "acc-1",
		Status:    "PARTIAL_FAILURE",
		Legs: []LegResult{
			{Operation: model.OpPlayer, Succeeded: true},
			{Operation: model.OpRecruiter, Succeeded: false, Reason: "timeout"},
		},
		At: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
	}
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	p := NewKafkaPublisher(Config{Enabled: false, Brokers: "localhost:9092"}, testutil.NopLogger())

	assert.False(t, p.Enabled())
	assert.NoError(t, p.PublishCommit(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}

func TestPublisherWithoutBrokersIsNoop(t *testing.T) {
	p := NewKafkaPublisher(Config{Enabled: true}, testutil.NopLogger())
	assert.False(t, p.Enabled())
}

func TestPublishCommit(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, DefaultTopic, testutil.NopLogger())

	require.NoError(t, p.PublishCommit(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, DefaultTopic, msg.Topic)
	assert.Equal(t, []byte("acc-1"), msg.Key)

	var decoded CommitEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "PARTIAL_FAILURE", decoded.Status)
	require.Len(t, decoded.Legs, 2)
	assert.Equal(t, model.OpRecruiter, decoded.Legs[1].Operation)
	assert.Equal(t, "timeout", decoded.Legs[1].Reason)
}

func TestPublishCommitPropagatesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, DefaultTopic, testutil.NopLogger())

	assert.EqualError(t, p.PublishCommit(context.Background(), sampleEvent()), "broker down")
}

func TestClose(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, DefaultTopic, testutil.NopLogger())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

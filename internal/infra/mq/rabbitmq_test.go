package mq

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bookstore/internal/config"
)

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAck) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func TestAckDelivery(t *testing.T) {
	ok := &fakeAck{}
	ackDelivery(amqp.Delivery{Acknowledger: ok, DeliveryTag: 1}, nil)
	assert.Equal(t, 1, ok.acked)
	assert.Equal(t, 0, ok.nacked)

	bad := &fakeAck{}
	ackDelivery(amqp.Delivery{Acknowledger: bad, DeliveryTag: 2}, fmt.Errorf("decode: %w", ErrDiscard))
	assert.Equal(t, 1, bad.nacked)
	assert.False(t, bad.requeue)

	retry := &fakeAck{}
	ackDelivery(amqp.Delivery{Acknowledger: retry, DeliveryTag: 3}, errors.New("db down"))
	assert.Equal(t, 1, retry.nacked)
	assert.True(t, retry.requeue)
}

func TestNewPublisherDrivers(t *testing.T) {
	p, err := NewPublisher(&config.MQConfig{Driver: "none"})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), "k", map[string]int{"a": 1}))

	k, err := NewPublisher(&config.MQConfig{Driver: "kafka", Brokers: []string{"127.0.0.1:9092"}, Queue: "order.status"})
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, k)
	assert.NoError(t, k.Close())

	_, err = NewPublisher(&config.MQConfig{Driver: "nats"})
	assert.Error(t, err)

	_, err = NewSubscriber(&config.MQConfig{Driver: "none"})
	assert.Error(t, err)
}

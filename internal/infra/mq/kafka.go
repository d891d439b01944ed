package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher 复用同一个 Writer，按 key 分区保证同一订单有序
type KafkaPublisher struct {
	w *kafkago.Writer
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// KafkaSubscriber 消费组模式读取，处理成功后才提交 offset
type KafkaSubscriber struct {
	r *kafkago.Reader
}

// NewKafkaSubscriber 创建 Kafka 订阅器
func NewKafkaSubscriber(brokers []string, topic, groupID string) *KafkaSubscriber {
	return &KafkaSubscriber{r: kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})}
}

func (s *KafkaSubscriber) Consume(ctx context.Context, h Handler) error {
	for {
		msg, err := s.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := h(ctx, msg.Value); err != nil && !errors.Is(err, ErrDiscard) {
			// 不提交 offset，重启后从该消息继续
			zap.L().Error("handle kafka message failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			return err
		}
		if err := s.r.CommitMessages(ctx, msg); err != nil {
			zap.L().Warn("commit kafka offset failed", zap.Error(err))
		}
	}
}

func (s *KafkaSubscriber) Close() error {
	return s.r.Close()
}

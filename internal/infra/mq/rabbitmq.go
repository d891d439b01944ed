package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/config"
)

var (
	conn *amqp.Connection
	once sync.Once
)

// Init 初始化 RabbitMQ 连接
func Init(cfg *config.MQConfig) *amqp.Connection {
	once.Do(func() {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Fatalf("failed to connect rabbitmq: %v", err)
		}
		conn = c
	})
	return conn
}

// Conn 获取 MQ 连接
func Conn() *amqp.Connection {
	return conn
}

// RabbitPublisher 以默认交换机直投到持久化队列
type RabbitPublisher struct {
	conn  *amqp.Connection
	queue string
}

// NewRabbitPublisher 创建 RabbitMQ 发布器
func NewRabbitPublisher(conn *amqp.Connection, queue string) *RabbitPublisher {
	return &RabbitPublisher{conn: conn, queue: queue}
}

// Publish key 写入消息的 Type 字段
func (p *RabbitPublisher) Publish(ctx context.Context, key string, v any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         key,
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() error {
	return nil
}

// RabbitSubscriber 手动确认模式消费队列
type RabbitSubscriber struct {
	conn  *amqp.Connection
	queue string
}

// NewRabbitSubscriber 创建 RabbitMQ 订阅器
func NewRabbitSubscriber(conn *amqp.Connection, queue string) *RabbitSubscriber {
	return &RabbitSubscriber{conn: conn, queue: queue}
}

func (s *RabbitSubscriber) Consume(ctx context.Context, h Handler) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return err
	}
	if err = ch.Qos(10, 0, false); err != nil {
		return err
	}

	// auto-ack=false
	msgs, err := ch.Consume(s.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			ackDelivery(d, h(ctx, d.Body))
		}
	}
}

// ackDelivery 成功确认；格式错误丢弃；其余失败重新入队
func ackDelivery(d amqp.Delivery, err error) {
	switch {
	case err == nil:
		if err := d.Ack(false); err != nil {
			zap.L().Warn("failed to ack message", zap.Error(err))
		}
	case errors.Is(err, ErrDiscard):
		zap.L().Warn("discard message", zap.Error(err))
		_ = d.Nack(false, false)
	default:
		zap.L().Error("handle message failed, requeue", zap.Error(err))
		_ = d.Nack(false, true)
	}
}

func (s *RabbitSubscriber) Close() error {
	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn.Close()
	}
	return nil
}

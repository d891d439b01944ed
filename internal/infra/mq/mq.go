package mq

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/bookstore/internal/config"
)

// ErrDiscard 处理函数返回该错误时消息直接丢弃，不再重投
var ErrDiscard = errors.New("mq: discard message")

// Publisher 消息发布接口，v 以 JSON 编码
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
	Close() error
}

// Handler 消费回调
type Handler func(ctx context.Context, body []byte) error

// Subscriber 消息订阅接口，Consume 阻塞直到 ctx 结束或连接断开
type Subscriber interface {
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// NewPublisher 按配置创建发布器
func NewPublisher(cfg *config.MQConfig) (Publisher, error) {
	switch cfg.Driver {
	case "rabbitmq", "":
		return NewRabbitPublisher(Init(cfg), cfg.Queue), nil
	case "kafka":
		return NewKafkaPublisher(cfg.Brokers, cfg.Queue), nil
	case "none":
		return NopPublisher{}, nil
	}
	return nil, fmt.Errorf("unknown mq driver %q", cfg.Driver)
}

// NewSubscriber 按配置创建订阅器
func NewSubscriber(cfg *config.MQConfig) (Subscriber, error) {
	switch cfg.Driver {
	case "rabbitmq", "":
		return NewRabbitSubscriber(Init(cfg), cfg.Queue), nil
	case "kafka":
		return NewKafkaSubscriber(cfg.Brokers, cfg.Queue, cfg.GroupID), nil
	}
	return nil, fmt.Errorf("mq driver %q cannot consume", cfg.Driver)
}

// NopPublisher 不发送任何消息
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

func randomNo() string {
	return uuid.NewString()
}

// Message 记录下来的一条消息
type Message struct {
	Key  string
	Body []byte
}

// RecordingPublisher 内存版消息发布器，记录所有消息
type RecordingPublisher struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

func (p *RecordingPublisher) Publish(ctx context.Context, key string, v any) error {
	if p.Err != nil {
		return p.Err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, Message{Key: key, Body: body})
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Messages 返回已发布消息的副本
func (p *RecordingPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.msgs...)
}

package pkg

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event 社区事件的统一信封。消息按实体 id 作 key，
// 同一实体的事件落在同一分区，消费侧看到的顺序就是发生顺序。
type Event struct {
	Kind string    `json:"kind"`
	ID   uint64    `json:"id"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// EventProducer 把社区事件写进 kafka
type EventProducer struct {
	writer *kafka.Writer
}

func NewEventProducer(brokers []string, topic string) *EventProducer {
	return &EventProducer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}}
}

func (p *EventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *EventProducer) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(e.ID, 10)),
		Value: payload,
	})
}

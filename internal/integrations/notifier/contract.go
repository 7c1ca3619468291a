package notifier

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessageWriter подмножество *kafka.Writer, используемое диспетчером
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Metrics interface {
	IncNotificationDropped()
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

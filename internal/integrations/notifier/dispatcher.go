package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	defaultTopic        = "appointments.events"
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

// Dispatcher fire-and-forget публикация событий записи.
// Notify никогда не блокирует: при переполнении очереди событие отбрасывается.
type Dispatcher struct {
	writer       MessageWriter
	topic        string
	writeTimeout time.Duration
	queue        chan domain.BookingEvent
	log          Logger
	metrics      Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewKafkaDispatcher без брокеров события только логируются
func NewKafkaDispatcher(cfg Config, log Logger, metrics Metrics) *Dispatcher {
	if len(cfg.Brokers) == 0 {
		log.Warn("notifier: kafka disabled (no brokers configured), events are logged only")
		return NewDispatcher(nil, cfg, log, metrics)
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Brokers,
		Balancer: &kafka.Hash{},
	})
	return NewDispatcher(writer, cfg, log, metrics)
}

// NewDispatcher writer == nil включает режим логирования
func NewDispatcher(writer MessageWriter, cfg Config, log Logger, metrics Metrics) *Dispatcher {
	if cfg.Topic == "" {
		cfg.Topic = defaultTopic
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	d := &Dispatcher{
		writer:       writer,
		topic:        cfg.Topic,
		writeTimeout: cfg.WriteTimeout,
		queue:        make(chan domain.BookingEvent, cfg.QueueSize),
		log:          log,
		metrics:      metrics,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Notify ставит событие в очередь
func (d *Dispatcher) Notify(event domain.BookingEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	select {
	case d.queue <- event:
	default:
		d.drop(event, "queue full")
	}
}

// Close дожидается отправки очереди и закрывает writer
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()

	if d.writer != nil {
		return d.writer.Close()
	}
	return nil
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for event := range d.queue {
		if err := d.publish(event); err != nil {
			d.log.Error("notifier: event=%s type=%s appointment=%d: %v", event.ID, event.Type, event.AppointmentID, err)
			continue
		}
	}
}

func (d *Dispatcher) publish(event domain.BookingEvent) error {
	if d.writer == nil {
		d.log.Info("notifier: %s appointment=%d provider=%d customer=%d %s-%s",
			event.Type, event.AppointmentID, event.ProviderID, event.CustomerID,
			event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339))
		return nil
	}

	payload, err := json.Marshal(newEventMessage(event))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeEvent, err)
	}

	msg := kafka.Message{
		Topic: d.topic,
		Key:   []byte(strconv.FormatInt(event.ProviderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return nil
}

func (d *Dispatcher) drop(event domain.BookingEvent, reason string) {
	d.log.Warn("notifier: dropped event=%s type=%s appointment=%d: %s", event.ID, event.Type, event.AppointmentID, reason)
	if d.metrics != nil {
		d.metrics.IncNotificationDropped()
	}
}

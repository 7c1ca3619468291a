package notifier

import "errors"

var (
	// ErrEncodeEvent не удалось сериализовать событие
	ErrEncodeEvent = errors.New("notifier: failed to encode event")
	// ErrPublish брокер отклонил сообщение
	ErrPublish = errors.New("notifier: failed to publish event")
)

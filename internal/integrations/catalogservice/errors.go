package catalogservice

import "errors"

var (
	// ErrServiceNotFound услуга отсутствует в каталоге
	ErrServiceNotFound = errors.New("catalogservice: service not found")

	// ErrInvalidDuration у услуги в каталоге неположительная длительность
	ErrInvalidDuration = errors.New("catalogservice: service has non-positive duration")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")
)

package customerservice

import "errors"

var (
	// ErrCustomerNotFound клиент не зарегистрирован
	ErrCustomerNotFound = errors.New("customerservice: customer not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("customerservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("customerservice client: invalid response")

	// ErrServiceDegraded сервис недоступен, проверка клиента пропущена
	ErrServiceDegraded = errors.New("customerservice unavailable: graceful degradation applied")
)

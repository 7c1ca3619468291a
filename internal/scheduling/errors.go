package scheduling

import "errors"

var (
	// ErrInvalidDuration длительность или шаг не положительны
	ErrInvalidDuration = errors.New("scheduling: duration and step must be positive")

	// ErrSourceFailed не удалось прочитать источник окна или исключений
	ErrSourceFailed = errors.New("scheduling: source read failed")
)

package rules

import "errors"

// ErrInvalidate не удалось сбросить кэш
var ErrInvalidate = errors.New("rules.cache: failed to invalidate")

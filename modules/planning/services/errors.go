package services

import (
	"errors"
	"fmt"
)

var ErrInvalidQuery = errors.New("invalid query")

func invalidQuery(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrInvalidQuery}, args...)...)
}

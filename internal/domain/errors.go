package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrUpstream   = errors.New("upstream unavailable")
)

// InputError is a BadRequest carrying a message meant for the client.
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return ErrBadRequest }

func BadRequestf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

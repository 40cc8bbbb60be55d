package nbu

import (
	"errors"
	"fmt"
)

var errNoQuote = errors.New("nbu: empty quote")

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("nbu: unexpected status %d", e.code) }

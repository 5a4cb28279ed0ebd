// Package shared holds the sentinel errors used across the client.
package shared

import (
	"errors"
	"fmt"
)

var (
	// common errors
	ErrorNotFound   = errors.New("not found")
	ErrorValidation = errors.New("validation error")

	// sign-up validation; both match ErrorValidation via errors.Is
	ErrorInvalidEmailFormat    = fmt.Errorf("%w: invalid email format", ErrorValidation)
	ErrorInvalidPasswordFormat = fmt.Errorf("%w: password must be at least 6 characters", ErrorValidation)
)

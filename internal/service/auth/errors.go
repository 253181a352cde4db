package auth

import (
	"errors"
	"fmt"
)

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, its signature doesn't
	// match, or its claims are unusable.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the nbf claim is in the future.
	ErrTokenNotYetValid = fmt.Errorf("%w: not yet valid", ErrInvalidToken)

	// ErrWrongTokenType indicates a token issued for another purpose, such as a refresh token.
	ErrWrongTokenType = fmt.Errorf("%w: wrong token type", ErrInvalidToken)

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)

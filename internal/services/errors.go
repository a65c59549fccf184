package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the order and payment services. Handlers map each
// kind to one HTTP status and a stable message.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrGatewayRejected     = errors.New("payment gateway rejected the request")
	ErrGatewayUnreachable  = errors.New("payment gateway unreachable")
	ErrInvalidNotification = errors.New("invalid payment notification")
	ErrUnknownOrder        = errors.New("unknown order")
	ErrInvalidState        = errors.New("order is not in a valid state for this operation")
	ErrStore               = errors.New("order store failure")
)

// GatewayRejectedError carries the gateway's reason for refusing a payment
// request. It matches ErrGatewayRejected.
type GatewayRejectedError struct {
	ResultCode int
	Message    string
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("%s: resultCode=%d message=%q", ErrGatewayRejected, e.ResultCode, e.Message)
}

func (e *GatewayRejectedError) Is(target error) bool {
	return target == ErrGatewayRejected
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

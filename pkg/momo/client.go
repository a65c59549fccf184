package momo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrTransport is returned when the gateway could not be reached.
	ErrTransport = errors.New("momo: transport failure")
	// ErrBadResponse is returned when the gateway answered with a body that
	// is not a create-payment response.
	ErrBadResponse = errors.New("momo: unexpected response")
)

// Config holds gateway client settings.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client calls the gateway's create-payment endpoint. It does not retry.
type Client struct {
	endpoint string
	timeout  time.Duration
}

// NewClient creates a new Client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		timeout:  timeout,
	}
}

// CreatePayment sends a signed create request. A response carrying a
// non-zero resultCode is returned without error; callers decide what a
// rejection means. The call is bounded by the client timeout or the
// context deadline, whichever is sooner.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(c.endpoint)
	agent.JSON(req)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrTransport, errors.Join(errs...))
	}

	var resp CreatePaymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w (status %d): %v", ErrBadResponse, code, err)
	}
	if code >= fiber.StatusInternalServerError && resp.ResultCode == ResultSuccess {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, code)
	}
	return &resp, nil
}

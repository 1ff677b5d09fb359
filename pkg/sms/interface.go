package sms

import "context"

// Provider delivers out-of-band text messages. Delivery is fire-and-forget on
// the happy path; errors propagate as generic failures.
type Provider interface {
	Send(ctx context.Context, request *Request) (*Response, error)
}

type Request struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type Response struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Package mail is the outbound-mail boundary. The credential service only
// sees the Dispatcher interface; the SMTP implementation lives behind it.
package mail

import (
	"context"
	"errors"
)

// ErrDelivery marks a transport failure. The credential service does not
// retry; a caller may retry the whole forgot-password call, which simply
// re-issues the token.
var ErrDelivery = errors.New("mail: delivery failed")

// Dispatcher sends a single message. At-least-once, fire-and-forget; a
// slow dispatch must never be made while holding a store transaction.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

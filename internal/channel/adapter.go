// Package channel sends one outreach message to one donor, either through a
// WhatsApp deep link handed to the operator's client or through the WhatsApp
// Cloud API.
package channel

import (
	"context"

	"github.com/unclebandit/donorlink-backend/internal/model"
)

// Credentials for the direct API strategy, resolved once per job.
type Credentials struct {
	Token         string
	PhoneNumberID string
}

// Message is everything an adapter needs for a single send.
type Message struct {
	Phone         string // already normalized by the caller
	RecipientName string
	AdminContact  string
	Text          string
	Credentials   Credentials
}

// Receipt describes an accepted send. Link is set by the deep-link strategy,
// MessageID and StatusCode by the API strategy.
type Receipt struct {
	Link       string
	MessageID  string
	StatusCode int
}

// Adapter transmits exactly one message per Send call. Failures are returned
// as *appErrors.OutreachError values.
type Adapter interface {
	Type() model.ChannelType
	Send(ctx context.Context, msg Message) (Receipt, error)
}

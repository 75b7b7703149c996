// internal/model/message.go
package model

import "time"

type ChannelType string

const (
	ChannelWhatsApp    ChannelType = "whatsapp"
	ChannelWhatsAppAPI ChannelType = "whatsapp_api"
)

type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusFailed  MessageStatus = "failed"
)

// AuditEntry is one row of the message audit log. It is written before the
// send attempt it describes; only Status is touched afterwards.
type AuditEntry struct {
	ID          string        `db:"id" json:"id"`
	DonorID     string        `db:"donor_id" json:"donor_id"`
	MessageText string        `db:"message_text" json:"message_text"`
	MessageType ChannelType   `db:"message_type" json:"message_type"`
	Status      MessageStatus `db:"status" json:"status"`
	SentAt      time.Time     `db:"sent_at" json:"sent_at"`
}

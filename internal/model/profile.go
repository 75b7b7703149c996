// internal/model/profile.go
package model

type Profile struct {
	ID             string  `db:"id" json:"id"`
	WhatsAppNumber *string `db:"whatsapp_number" json:"whatsapp_number,omitempty"`
	IsAdmin        bool    `db:"is_admin" json:"is_admin"`
}

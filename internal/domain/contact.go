package domain

import "time"

type ContactStatus string

const (
	ContactStatusUnread  ContactStatus = "unread"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

// Contact is a buyer inquiry addressed to a seller.
type Contact struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Message     string        `json:"message"`
	RecipientID string        `json:"recipient_id"`
	Status      ContactStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

package models

import "time"

// MessageTimeLayout is the timestamp format used when a private message is
// rendered for display. Natural-key message lookups compare timestamps at
// this layout's precision (minutes): two otherwise identical messages sent
// in the same minute are indistinguishable.
const MessageTimeLayout = "Jan 02, 2006 03:04 PM"

// StaffMessage covers the Staff<->Instructor and Instructor-composed flows.
// These messages have a durable id and inbox state.
type StaffMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Recipient string    `gorm:"type:varchar(50);not null;index" json:"recipient"`
	Sender    string    `gorm:"type:varchar(50);not null;index" json:"sender"`
	Subject   string    `gorm:"type:varchar(100)" json:"subject"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	SentAt    time.Time `gorm:"index" json:"sent_at"`

	IsFlagged  bool   `gorm:"default:false" json:"is_flagged"`
	FlagReason string `gorm:"type:varchar(500)" json:"flag_reason"`

	IsRead         bool `gorm:"default:false" json:"is_read"`
	IsDeletedInbox bool `gorm:"default:false" json:"is_deleted_inbox"`
	IsRepliedTo    bool `gorm:"default:false" json:"is_replied_to"`

	Version int `gorm:"default:0" json:"-"`
}

// StudentMessage covers the Student<->Student flow. No operation ever
// addresses the storage id: identity is the composite tuple
// (recipient name, sender name, sent-at minute, subject, body).
type StudentMessage struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	RecipientName string    `gorm:"type:varchar(100);not null;index" json:"recipient_name"`
	SenderName    string    `gorm:"type:varchar(100);not null;index" json:"sender_name"`
	Subject       string    `gorm:"type:varchar(100)" json:"subject"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	SentAt        time.Time `gorm:"index" json:"sent_at"`

	IsFlagged  bool   `gorm:"default:false" json:"is_flagged"`
	FlagReason string `gorm:"type:varchar(500)" json:"flag_reason"`
	IsRead     bool   `gorm:"default:false" json:"is_read"`
}

// ReviewerMessage covers the Reviewer<->Student flow. Same identity regime
// as StudentMessage.
type ReviewerMessage struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	RecipientName string    `gorm:"type:varchar(100);not null;index" json:"recipient_name"`
	SenderName    string    `gorm:"type:varchar(100);not null;index" json:"sender_name"`
	Subject       string    `gorm:"type:varchar(100)" json:"subject"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	SentAt        time.Time `gorm:"index" json:"sent_at"`

	IsFlagged  bool   `gorm:"default:false" json:"is_flagged"`
	FlagReason string `gorm:"type:varchar(500)" json:"flag_reason"`
	IsRead     bool   `gorm:"default:false" json:"is_read"`
}

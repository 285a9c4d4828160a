package models

import "time"

// Answer is a student's answer to a question. IsResolved is only ever set
// through the resolution flow, which also resolves the parent question.
type Answer struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint64 `gorm:"not null;index" json:"question_id"`
	Body       string `gorm:"type:text;not null" json:"body"`

	AuthorUsername  string `gorm:"type:varchar(50);index" json:"author_username"`
	AuthorFirstName string `gorm:"type:varchar(50)" json:"author_first_name"`
	AuthorLastName  string `gorm:"type:varchar(50)" json:"author_last_name"`

	IsFlagged  bool   `gorm:"default:false;index" json:"is_flagged"`
	FlagReason string `gorm:"type:varchar(500)" json:"flag_reason"`
	IsHidden   bool   `gorm:"default:false;index" json:"is_hidden"`
	IsResolved bool   `gorm:"default:false" json:"is_resolved"`

	// Per-question unread counts are derived from this flag, never stored.
	IsUnread bool `gorm:"default:true" json:"is_unread"`

	Version   int       `gorm:"default:0" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorDisplayName is the rendered author label.
func (a *Answer) AuthorDisplayName() string {
	if a.AuthorFirstName == "" && a.AuthorLastName == "" {
		return a.AuthorUsername
	}
	return a.AuthorFirstName + " " + a.AuthorLastName
}

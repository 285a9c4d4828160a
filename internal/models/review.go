package models

import "time"

// Review is a reviewer's assessment of an answer. Revisions never mutate or
// delete their predecessor: "create new from previous" inserts a fresh row
// whose PrevReviewID points at the old one, so every version of a review
// stays independently queryable by answer.
type Review struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint64 `gorm:"not null;index" json:"question_id"`
	AnswerID   uint64 `gorm:"not null;index" json:"answer_id"`
	Body       string `gorm:"type:text;not null" json:"body"`

	AuthorUsername  string `gorm:"type:varchar(50);index" json:"author_username"`
	AuthorFirstName string `gorm:"type:varchar(50)" json:"author_first_name"`
	AuthorLastName  string `gorm:"type:varchar(50)" json:"author_last_name"`

	IsFlagged  bool   `gorm:"default:false;index" json:"is_flagged"`
	FlagReason string `gorm:"type:varchar(500)" json:"flag_reason"`
	IsHidden   bool   `gorm:"default:false;index" json:"is_hidden"`

	// Nil on a root review; otherwise the id of the version this one
	// supersedes. The predecessor must share the same AnswerID.
	PrevReviewID *uint64 `gorm:"index" json:"prev_review_id,omitempty"`

	Version   int       `gorm:"default:0" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRevision reports whether this review supersedes an earlier version.
func (r *Review) IsRevision() bool {
	return r.PrevReviewID != nil
}

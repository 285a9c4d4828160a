package models

import "time"

// Sentinel author identity written over a soft-deleted question. The row and
// its answers persist; only the author fields are overwritten.
const (
	DeletedAuthorFirstName = "Deleted"
	DeletedAuthorLastName  = "Student"
)

// Question is both a top-level question and, when ParentQuestionID is set,
// a reply posted under another question. Replies carry ReplyingTo (the
// display label of the parent) and never participate in resolution.
type Question struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"type:varchar(100)" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	// Denormalized author identity. AuthorUsername may be empty for
	// legacy or soft-deleted content; the names are then all we have.
	AuthorUsername  string `gorm:"type:varchar(50);index" json:"author_username"`
	AuthorFirstName string `gorm:"type:varchar(50)" json:"author_first_name"`
	AuthorLastName  string `gorm:"type:varchar(50)" json:"author_last_name"`

	IsFlagged  bool   `gorm:"default:false;index" json:"is_flagged"`
	FlagReason string `gorm:"type:varchar(500)" json:"flag_reason"`
	IsHidden   bool   `gorm:"default:false;index" json:"is_hidden"`
	IsResolved bool   `gorm:"default:false" json:"is_resolved"`

	// Predecessor pointer for "create new question from previous".
	PreviousQuestionID *uint64 `gorm:"index" json:"previous_question_id,omitempty"`

	// Set only on the reply sub-kind.
	ParentQuestionID *uint64 `gorm:"index" json:"parent_question_id,omitempty"`
	ReplyingTo       string  `gorm:"type:varchar(150)" json:"replying_to,omitempty"`

	Version   int       `gorm:"default:0" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReply reports whether this row is the reply sub-kind.
func (q *Question) IsReply() bool {
	return q.ParentQuestionID != nil
}

// AuthorDisplayName is the rendered author label.
func (q *Question) AuthorDisplayName() string {
	if q.AuthorFirstName == "" && q.AuthorLastName == "" {
		return q.AuthorUsername
	}
	return q.AuthorFirstName + " " + q.AuthorLastName
}

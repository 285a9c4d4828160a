package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleReviewer   Role = "reviewer"
	RoleInstructor Role = "instructor"
	RoleStaff      Role = "staff"
)

// CanFlag reports whether the role may flag content. Flagging carries a
// mandatory reason and is reserved for Staff.
func (r Role) CanFlag() bool {
	return r == RoleStaff
}

// CanModerate reports whether the role may unflag, hide or unhide content.
func (r Role) CanModerate() bool {
	return r == RoleStaff || r == RoleInstructor
}

// CanMute reports whether the role may mute a user. Muting cascades over
// everything the user ever posted, so it is Staff only.
func (r Role) CanMute() bool {
	return r == RoleStaff
}

// CanUnmute reports whether the role may unmute a user.
func (r Role) CanUnmute() bool {
	return r == RoleStaff || r == RoleInstructor
}

// SeesHidden reports whether listings should include hidden rows for this
// role. Hidden content stays visible (greyed) to moderators.
func (r Role) SeesHidden() bool {
	return r == RoleStaff || r == RoleInstructor || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	FirstName    string         `gorm:"type:varchar(50)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(50)" json:"last_name"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	IsMuted      bool           `gorm:"default:false;index" json:"is_muted"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// DisplayName is the name content listings render next to a post.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a login account. Role holds a role name resolved against roles.name at request time.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username    string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Role        string         `gorm:"type:varchar(50);not null;index" json:"role"`
	Email       *string        `gorm:"type:varchar(255)" json:"email"`
	Phone       *string        `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExternalUID string    `gorm:"uniqueIndex;not null;column:external_uid" json:"external_uid"`
	Email       string    `gorm:"index;column:email" json:"email"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	PhotoURL    string    `gorm:"column:photo_url" json:"photo_url"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

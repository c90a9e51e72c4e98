package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IkigaiRecord is the single durable document per user: wizard answers, the
// generated candidate statements, the user's selection and image references.
type IkigaiRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Answers        datatypes.JSON `gorm:"column:answers;type:jsonb" json:"answers"`
	IkigaiOptions  datatypes.JSON `gorm:"column:ikigai_options;type:jsonb" json:"ikigaiOptions"`
	IkigaiSelected datatypes.JSON `gorm:"column:ikigai_selected;type:jsonb" json:"ikigaiSelected"`

	IkigaiGuidance   string `gorm:"column:ikigai_guidance" json:"ikigaiGuidance"`
	IkigaiImage      string `gorm:"column:ikigai_image" json:"ikigaiImage"`
	IkigaiCoverImage string `gorm:"column:ikigai_cover_image" json:"ikigaiCoverImage"`

	Sharable     bool   `gorm:"column:sharable;not null;default:false" json:"sharable"`
	SharableSlug string `gorm:"column:sharable_slug;index" json:"sharableSlug,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (IkigaiRecord) TableName() string { return "ikigai_record" }

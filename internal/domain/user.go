package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is an account holder. Cash never goes negative.
type User struct {
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username  string          `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Hash      string          `gorm:"column:hash;not null" json:"-"`
	Cash      decimal.Decimal `gorm:"column:cash;type:decimal(18,2);not null;default:0" json:"cash"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

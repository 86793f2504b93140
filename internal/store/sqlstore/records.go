package sqlstore

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaseModel is gorm.Model without soft deletes. Lists must really disappear
// on delete, otherwise the (user_id, name) unique index would keep a deleted
// name reserved.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type userRecord struct {
	gorm.Model

	Username     *string `gorm:"size:191;uniqueIndex"`
	Email        string  `gorm:"size:320"`
	PasswordHash string
	GoogleID     *string `gorm:"size:191;uniqueIndex"`
	Profile      datatypes.JSONMap

	// Relationships
	Lists []listRecord `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (userRecord) TableName() string { return "users" }

type listRecord struct {
	BaseModel

	UserID uint   `gorm:"not null;uniqueIndex:idx_lists_user_name"`
	Name   string `gorm:"size:191;not null;uniqueIndex:idx_lists_user_name"`

	// Relationships
	Tasks []taskRecord `gorm:"foreignKey:ListID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (listRecord) TableName() string { return "lists" }

type taskRecord struct {
	BaseModel

	ListID uint   `gorm:"not null;index"`
	Name   string `gorm:"not null"`
}

func (taskRecord) TableName() string { return "tasks" }

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseID reports false for ids that cannot belong to this store, which
// callers treat the same as a missing row.
func parseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 64)

	if err != nil || n == 0 {
		return 0, false
	}

	return uint(n), true
}

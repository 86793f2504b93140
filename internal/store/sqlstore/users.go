package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

const usersTable = "users"

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	record := userRecord{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}

	if user.Username != "" {
		record.Username = &user.Username
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return translate("CreateUser", usersTable, err)
	}

	*user = toUser(record)
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	uid, ok := parseID(id)

	if !ok {
		return nil, store.Wrap("FindUserByID", usersTable, store.ErrNotFound)
	}

	var record userRecord

	if err := s.db.WithContext(ctx).First(&record, uid).Error; err != nil {
		return nil, translate("FindUserByID", usersTable, err)
	}

	user := toUser(record)
	return &user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var record userRecord

	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&record).Error; err != nil {
		return nil, translate("FindUserByUsername", usersTable, err)
	}

	user := toUser(record)
	return &user, nil
}

// UpsertGoogleUser inserts the user keyed on the Google subject id, or
// refreshes the profile of the existing one, in a single statement.
func (s *Store) UpsertGoogleUser(ctx context.Context, profile models.GoogleProfile) (*models.User, error) {
	if profile.ID == "" {
		return nil, store.Wrap("UpsertGoogleUser", usersTable, fmt.Errorf("empty google id"))
	}

	googleID := profile.ID
	record := userRecord{
		Email:    profile.Email,
		GoogleID: &googleID,
		Profile: datatypes.JSONMap{
			"email":   profile.Email,
			"picture": profile.Picture,
		},
	}

	db := s.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "google_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "profile", "updated_at"}),
	}).Create(&record).Error

	if err != nil {
		return nil, translate("UpsertGoogleUser", usersTable, err)
	}

	var stored userRecord

	if err := db.Where("google_id = ?", googleID).First(&stored).Error; err != nil {
		return nil, translate("UpsertGoogleUser", usersTable, err)
	}

	user := toUser(stored)
	return &user, nil
}

func toUser(record userRecord) models.User {
	user := models.User{
		ID:           formatID(record.ID),
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}

	if record.Username != nil {
		user.Username = *record.Username
	}

	if record.GoogleID != nil {
		user.GoogleID = *record.GoogleID
	}

	if picture, ok := record.Profile["picture"].(string); ok {
		user.Picture = picture
	}

	return user
}

package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.users.InsertOne(ctx, user)

	return translate("CreateUser", usersCollection, err)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "FindUserByID", bson.M{"_id": id})
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "FindUserByUsername", bson.M{"username": username})
}

// UpsertGoogleUser is a find-one-and-update with upsert keyed on googleId.
// Two first logins racing each other can both attempt the insert; the loser
// hits the unique index and reads the winner's document instead.
func (s *Store) UpsertGoogleUser(ctx context.Context, profile models.GoogleProfile) (*models.User, error) {
	if profile.ID == "" {
		return nil, store.Wrap("UpsertGoogleUser", usersCollection, fmt.Errorf("empty google id"))
	}

	filter := bson.M{"googleId": profile.ID}
	set := bson.M{}

	if profile.Email != "" {
		set["email"] = profile.Email
	}

	if profile.Picture != "" {
		set["picture"] = profile.Picture
	}

	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"createdAt": time.Now().UTC(),
		},
	}

	if len(set) > 0 {
		update["$set"] = set
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User

	err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)

	if mongo.IsDuplicateKeyError(err) {
		return s.findUser(ctx, "UpsertGoogleUser", filter)
	}

	if err != nil {
		return nil, translate("UpsertGoogleUser", usersCollection, err)
	}

	return &user, nil
}

func (s *Store) findUser(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var user models.User

	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(op, usersCollection, err)
	}

	return &user, nil
}

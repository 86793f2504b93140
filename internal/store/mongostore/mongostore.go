// Package mongostore keeps users and lists in MongoDB. Tasks are embedded in
// their list document, so every task mutation is a single-document update
// and deleting a list deletes its tasks with it.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/monocle-dev/todolist/internal/store"
)

const (
	listsCollection = "lists"
	usersCollection = "users"

	defaultDatabase = "todolistDB"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type Store struct {
	client *mongo.Client
	lists  *mongo.Collection
	users  *mongo.Collection
}

func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.ConnectTimeout

	if timeout == 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)

	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	name := cfg.Database

	if name == "" {
		name = defaultDatabase
	}

	return New(client, name), nil
}

// New builds a store on an existing client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)

	return &Store{
		client: client,
		lists:  db.Collection(listsCollection),
		users:  db.Collection(usersCollection),
	}
}

// Migrate creates the indexes the store's invariants depend on: one list per
// (user, name), and at most one user per username and per Google id.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.lists.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_name_unique"),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("user_created"),
		},
	})

	if err != nil {
		return fmt.Errorf("create list indexes: %w", err)
	}

	_, err = s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("google_id_unique"),
		},
	})

	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(op, collection string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.Wrap(op, collection, store.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return store.Wrap(op, collection, fmt.Errorf("%w: %v", store.ErrDuplicate, err))
	}

	return store.Wrap(op, collection, err)
}

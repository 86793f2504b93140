package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

func (s *Store) FindList(ctx context.Context, userID, name string) (*models.List, error) {
	var list models.List

	err := s.lists.FindOne(ctx, bson.M{"user": userID, "name": name}).Decode(&list)

	if err != nil {
		return nil, translate("FindList", listsCollection, err)
	}

	if list.Tasks == nil {
		list.Tasks = []models.Task{}
	}

	return &list, nil
}

// InsertList relies on the user_name_unique index to reject a second list
// with the same name.
func (s *Store) InsertList(ctx context.Context, list *models.List) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}

	// $push needs an array, never null.
	if list.Tasks == nil {
		list.Tasks = []models.Task{}
	}

	_, err := s.lists.InsertOne(ctx, list)

	return translate("InsertList", listsCollection, err)
}

func (s *Store) ListsByUser(ctx context.Context, userID string) ([]models.List, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.lists.Find(ctx, bson.M{"user": userID}, opts)

	if err != nil {
		return nil, translate("ListsByUser", listsCollection, err)
	}

	lists := []models.List{}

	if err := cursor.All(ctx, &lists); err != nil {
		return nil, translate("ListsByUser", listsCollection, err)
	}

	for i := range lists {
		if lists[i].Tasks == nil {
			lists[i].Tasks = []models.Task{}
		}
	}

	return lists, nil
}

// DeleteList removes the document, and with it the embedded tasks.
func (s *Store) DeleteList(ctx context.Context, userID, listID, name string) error {
	res, err := s.lists.DeleteOne(ctx, bson.M{"_id": listID, "user": userID, "name": name})

	if err != nil {
		return translate("DeleteList", listsCollection, err)
	}

	if res.DeletedCount == 0 {
		return store.Wrap("DeleteList", listsCollection, store.ErrNotFound)
	}

	return nil
}

func (s *Store) AppendTask(ctx context.Context, userID, listName string, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	res, err := s.lists.UpdateOne(ctx,
		bson.M{"user": userID, "name": listName},
		bson.M{"$push": bson.M{"items": task}},
	)

	if err != nil {
		return translate("AppendTask", listsCollection, err)
	}

	if res.MatchedCount == 0 {
		return store.Wrap("AppendTask", listsCollection, store.ErrNotFound)
	}

	return nil
}

// RenameTask sets the name of the matched array element only, so concurrent
// edits to other tasks in the same list are not overwritten.
func (s *Store) RenameTask(ctx context.Context, userID, listName, taskID, name string) error {
	res, err := s.lists.UpdateOne(ctx,
		bson.M{"user": userID, "name": listName, "items._id": taskID},
		bson.M{"$set": bson.M{"items.$.name": name}},
	)

	if err != nil {
		return translate("RenameTask", listsCollection, err)
	}

	if res.MatchedCount == 0 {
		return store.Wrap("RenameTask", listsCollection, store.ErrNotFound)
	}

	return nil
}

// RemoveTask pulls the task from the list. A task that is already gone still
// matches the list, so repeating the call is harmless.
func (s *Store) RemoveTask(ctx context.Context, userID, listName, taskID string) error {
	res, err := s.lists.UpdateOne(ctx,
		bson.M{"user": userID, "name": listName},
		bson.M{"$pull": bson.M{"items": bson.M{"_id": taskID}}},
	)

	if err != nil {
		return translate("RemoveTask", listsCollection, err)
	}

	if res.MatchedCount == 0 {
		return store.Wrap("RemoveTask", listsCollection, store.ErrNotFound)
	}

	return nil
}

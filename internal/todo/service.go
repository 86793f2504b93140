// Package todo implements list provisioning and the list and task mutations.
// Every operation is scoped to the calling user, and consistency under
// concurrent requests comes from the store's atomic primitives rather than
// from locks held in this process.
package todo

import (
	"context"
	"strings"
	"time"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

// Store is the persistence contract the service relies on.
//
// InsertList must fail with store.ErrDuplicate when (UserID, Name) is taken.
// AppendTask, RenameTask and RemoveTask must each be a single scoped store
// operation filtered by user, list name and (where given) task id.
// DeleteList must remove the list's tasks together with the list.
type Store interface {
	FindList(ctx context.Context, userID, name string) (*models.List, error)
	InsertList(ctx context.Context, list *models.List) error
	ListsByUser(ctx context.Context, userID string) ([]models.List, error)
	DeleteList(ctx context.Context, userID, listID, name string) error
	AppendTask(ctx context.Context, userID, listName string, task *models.Task) error
	RenameTask(ctx context.Context, userID, listName, taskID, name string) error
	RemoveTask(ctx context.Context, userID, listName, taskID string) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// WithClock replaces the clock used to stamp new lists.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolveOrCreateList returns the user's list with the given name, creating
// an empty one on first access. Concurrent first accesses converge on a
// single list: the loser of the insert race gets a duplicate-key error from
// the store and re-reads the winner's list.
func (s *Service) ResolveOrCreateList(ctx context.Context, userID, listName string) (*models.List, error) {
	const op = "ResolveOrCreateList"

	if userID == "" {
		return nil, fail(op, ErrNotAuthenticated)
	}

	name := NormalizeListName(listName)

	if name == "" {
		return nil, fail(op, ErrInvalidListName)
	}

	list, err := s.store.FindList(ctx, userID, name)

	if err == nil {
		return list, nil
	}

	if !store.IsNotFound(err) {
		return nil, unavailable(op, err)
	}

	list, err = s.insertList(ctx, userID, name)

	if err == nil {
		return list, nil
	}

	if !store.IsDuplicate(err) {
		return nil, unavailable(op, err)
	}

	list, err = s.store.FindList(ctx, userID, name)

	if err != nil {
		return nil, unavailable(op, err)
	}

	return list, nil
}

// EnsureMainList provisions the user's default list.
func (s *Service) EnsureMainList(ctx context.Context, userID string) (*models.List, error) {
	return s.ResolveOrCreateList(ctx, userID, models.MainListName)
}

// ListAllForUser returns the user's lists in creation order.
func (s *Service) ListAllForUser(ctx context.Context, userID string) ([]models.List, error) {
	const op = "ListAllForUser"

	if userID == "" {
		return nil, fail(op, ErrNotAuthenticated)
	}

	lists, err := s.store.ListsByUser(ctx, userID)

	if err != nil {
		return nil, unavailable(op, err)
	}

	if lists == nil {
		lists = []models.List{}
	}

	return lists, nil
}

// CreateList creates an empty list. When the normalized name is already
// taken it returns the existing list along with ErrDuplicateList.
func (s *Service) CreateList(ctx context.Context, userID, rawName string) (*models.List, error) {
	const op = "CreateList"

	if userID == "" {
		return nil, fail(op, ErrNotAuthenticated)
	}

	name := NormalizeListName(rawName)

	if name == "" {
		return nil, fail(op, ErrInvalidListName)
	}

	list, err := s.insertList(ctx, userID, name)

	if err == nil {
		return list, nil
	}

	if !store.IsDuplicate(err) {
		return nil, unavailable(op, err)
	}

	existing, err := s.store.FindList(ctx, userID, name)

	if err != nil {
		return nil, unavailable(op, err)
	}

	return existing, fail(op, ErrDuplicateList)
}

// DeleteList removes a list and its tasks. The list must match the user, the
// id and the expected name; the Main list is never deleted.
func (s *Service) DeleteList(ctx context.Context, userID, listID, expectedName string) error {
	const op = "DeleteList"

	if userID == "" {
		return fail(op, ErrNotAuthenticated)
	}

	name := NormalizeListName(expectedName)

	if name == models.MainListName {
		return fail(op, ErrMainListProtected)
	}

	if listID == "" || name == "" {
		return fail(op, ErrListNotFound)
	}

	err := s.store.DeleteList(ctx, userID, listID, name)

	switch {
	case err == nil:
		return nil
	case store.IsNotFound(err):
		return fail(op, ErrListNotFound)
	default:
		return unavailable(op, err)
	}
}

// AddTask appends a task to the end of the list.
func (s *Service) AddTask(ctx context.Context, userID, listName, text string) (*models.Task, error) {
	const op = "AddTask"

	if userID == "" {
		return nil, fail(op, ErrNotAuthenticated)
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fail(op, ErrEmptyTask)
	}

	task := &models.Task{Name: text}
	err := s.store.AppendTask(ctx, userID, NormalizeListName(listName), task)

	switch {
	case err == nil:
		return task, nil
	case store.IsNotFound(err):
		return nil, fail(op, ErrListNotFound)
	default:
		return nil, unavailable(op, err)
	}
}

// EditTask renames one task in place.
func (s *Service) EditTask(ctx context.Context, userID, listName, taskID, text string) (*models.Task, error) {
	const op = "EditTask"

	if userID == "" {
		return nil, fail(op, ErrNotAuthenticated)
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fail(op, ErrEmptyTask)
	}

	if taskID == "" {
		return nil, fail(op, ErrTaskNotFound)
	}

	err := s.store.RenameTask(ctx, userID, NormalizeListName(listName), taskID, text)

	switch {
	case err == nil:
		return &models.Task{ID: taskID, Name: text}, nil
	case store.IsNotFound(err):
		return nil, fail(op, ErrTaskNotFound)
	default:
		return nil, unavailable(op, err)
	}
}

// DeleteTask removes a task from the list. Deleting a task that is already
// gone is not an error.
func (s *Service) DeleteTask(ctx context.Context, userID, listName, taskID string) error {
	const op = "DeleteTask"

	if userID == "" {
		return fail(op, ErrNotAuthenticated)
	}

	err := s.store.RemoveTask(ctx, userID, NormalizeListName(listName), taskID)

	switch {
	case err == nil:
		return nil
	case store.IsNotFound(err):
		return fail(op, ErrListNotFound)
	default:
		return unavailable(op, err)
	}
}

func (s *Service) insertList(ctx context.Context, userID, name string) (*models.List, error) {
	list := &models.List{
		UserID:    userID,
		Name:      name,
		Tasks:     []models.Task{},
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertList(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

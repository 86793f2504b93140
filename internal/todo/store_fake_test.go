package todo_test

import (
	"context"
	"strconv"
	"sync"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

// memStore keeps lists in memory and enforces the same uniqueness and
// scoping rules as the real stores.
type memStore struct {
	mu     sync.Mutex
	nextID int
	lists  []*models.List
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) id() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *memStore) find(userID, name string) *models.List {
	for _, list := range m.lists {
		if list.UserID == userID && list.Name == name {
			return list
		}
	}
	return nil
}

func clone(list *models.List) *models.List {
	out := *list
	out.Tasks = append([]models.Task{}, list.Tasks...)
	return &out
}

func (m *memStore) FindList(_ context.Context, userID, name string) (*models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.find(userID, name)
	if list == nil {
		return nil, store.Wrap("FindList", "lists", store.ErrNotFound)
	}

	return clone(list), nil
}

func (m *memStore) InsertList(_ context.Context, list *models.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.find(list.UserID, list.Name) != nil {
		return store.Wrap("InsertList", "lists", store.ErrDuplicate)
	}

	list.ID = m.id()
	m.lists = append(m.lists, clone(list))

	return nil
}

func (m *memStore) ListsByUser(_ context.Context, userID string) ([]models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.List
	for _, list := range m.lists {
		if list.UserID == userID {
			out = append(out, *clone(list))
		}
	}

	return out, nil
}

func (m *memStore) DeleteList(_ context.Context, userID, listID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, list := range m.lists {
		if list.ID == listID && list.UserID == userID && list.Name == name {
			m.lists = append(m.lists[:i], m.lists[i+1:]...)
			return nil
		}
	}

	return store.Wrap("DeleteList", "lists", store.ErrNotFound)
}

func (m *memStore) AppendTask(_ context.Context, userID, listName string, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.find(userID, listName)
	if list == nil {
		return store.Wrap("AppendTask", "lists", store.ErrNotFound)
	}

	task.ID = m.id()
	list.Tasks = append(list.Tasks, *task)

	return nil
}

func (m *memStore) RenameTask(_ context.Context, userID, listName, taskID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if list := m.find(userID, listName); list != nil {
		for i := range list.Tasks {
			if list.Tasks[i].ID == taskID {
				list.Tasks[i].Name = name
				return nil
			}
		}
	}

	return store.Wrap("RenameTask", "lists", store.ErrNotFound)
}

func (m *memStore) RemoveTask(_ context.Context, userID, listName, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.find(userID, listName)
	if list == nil {
		return store.Wrap("RemoveTask", "lists", store.ErrNotFound)
	}

	for i := range list.Tasks {
		if list.Tasks[i].ID == taskID {
			list.Tasks = append(list.Tasks[:i], list.Tasks[i+1:]...)
			break
		}
	}

	return nil
}

// racingStore simulates losing the insert race: the first lookup misses, the
// insert collides with a list another request just created.
type racingStore struct {
	*memStore
	finds int
}

func (r *racingStore) FindList(ctx context.Context, userID, name string) (*models.List, error) {
	r.finds++
	if r.finds == 1 {
		return nil, store.Wrap("FindList", "lists", store.ErrNotFound)
	}
	return r.memStore.FindList(ctx, userID, name)
}

// brokenStore fails every call the way an unreachable database would.
type brokenStore struct {
	err error
}

func (b brokenStore) FindList(context.Context, string, string) (*models.List, error) {
	return nil, b.err
}

func (b brokenStore) InsertList(context.Context, *models.List) error { return b.err }

func (b brokenStore) ListsByUser(context.Context, string) ([]models.List, error) {
	return nil, b.err
}

func (b brokenStore) DeleteList(context.Context, string, string, string) error { return b.err }

func (b brokenStore) AppendTask(context.Context, string, string, *models.Task) error { return b.err }

func (b brokenStore) RenameTask(context.Context, string, string, string, string) error {
	return b.err
}

func (b brokenStore) RemoveTask(context.Context, string, string, string) error { return b.err }

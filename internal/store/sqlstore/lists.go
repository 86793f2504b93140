package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

const (
	listsTable = "lists"
	tasksTable = "tasks"
)

func orderedTasks(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (s *Store) FindList(ctx context.Context, userID, name string) (*models.List, error) {
	uid, ok := parseID(userID)

	if !ok {
		return nil, store.Wrap("FindList", listsTable, store.ErrNotFound)
	}

	var list listRecord

	err := s.db.WithContext(ctx).
		Preload("Tasks", orderedTasks).
		Where("user_id = ? AND name = ?", uid, name).
		First(&list).Error

	if err != nil {
		return nil, translate("FindList", listsTable, err)
	}

	result := toList(list)
	return &result, nil
}

func (s *Store) InsertList(ctx context.Context, list *models.List) error {
	uid, ok := parseID(list.UserID)

	if !ok {
		return store.Wrap("InsertList", listsTable, fmt.Errorf("invalid user id %q", list.UserID))
	}

	record := listRecord{
		BaseModel: BaseModel{CreatedAt: list.CreatedAt},
		UserID:    uid,
		Name:      list.Name,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return translate("InsertList", listsTable, err)
	}

	list.ID = formatID(record.ID)
	list.CreatedAt = record.CreatedAt

	if list.Tasks == nil {
		list.Tasks = []models.Task{}
	}

	return nil
}

func (s *Store) ListsByUser(ctx context.Context, userID string) ([]models.List, error) {
	uid, ok := parseID(userID)

	if !ok {
		return []models.List{}, nil
	}

	var records []listRecord

	err := s.db.WithContext(ctx).
		Preload("Tasks", orderedTasks).
		Where("user_id = ?", uid).
		Order("id ASC").
		Find(&records).Error

	if err != nil {
		return nil, translate("ListsByUser", listsTable, err)
	}

	lists := make([]models.List, 0, len(records))

	for _, record := range records {
		lists = append(lists, toList(record))
	}

	return lists, nil
}

// DeleteList removes the list and its tasks in one transaction.
func (s *Store) DeleteList(ctx context.Context, userID, listID, name string) error {
	uid, okUser := parseID(userID)
	lid, okList := parseID(listID)

	if !okUser || !okList {
		return store.Wrap("DeleteList", listsTable, store.ErrNotFound)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list listRecord

		if err := tx.Where("id = ? AND user_id = ? AND name = ?", lid, uid, name).First(&list).Error; err != nil {
			return err
		}

		if err := tx.Where("list_id = ?", list.ID).Delete(&taskRecord{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&list)

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	return translate("DeleteList", listsTable, err)
}

// AppendTask inserts the task at the end of the named list.
func (s *Store) AppendTask(ctx context.Context, userID, listName string, task *models.Task) error {
	uid, ok := parseID(userID)

	if !ok {
		return store.Wrap("AppendTask", tasksTable, store.ErrNotFound)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list listRecord

		if err := tx.Select("id").Where("user_id = ? AND name = ?", uid, listName).First(&list).Error; err != nil {
			return err
		}

		record := taskRecord{ListID: list.ID, Name: task.Name}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		task.ID = formatID(record.ID)
		return nil
	})

	return translate("AppendTask", tasksTable, err)
}

// RenameTask is a single UPDATE scoped by task id, list name and owner.
func (s *Store) RenameTask(ctx context.Context, userID, listName, taskID, name string) error {
	uid, okUser := parseID(userID)
	tid, okTask := parseID(taskID)

	if !okUser || !okTask {
		return store.Wrap("RenameTask", tasksTable, store.ErrNotFound)
	}

	db := s.db.WithContext(ctx)

	res := db.Model(&taskRecord{}).
		Where("id = ? AND list_id IN (?)", tid, s.ownedList(db, uid, listName)).
		Update("name", name)

	if res.Error != nil {
		return translate("RenameTask", tasksTable, res.Error)
	}

	if res.RowsAffected == 0 {
		return store.Wrap("RenameTask", tasksTable, store.ErrNotFound)
	}

	return nil
}

// RemoveTask is a single DELETE scoped by task id, list name and owner. It
// only reports ErrNotFound when the list itself is missing.
func (s *Store) RemoveTask(ctx context.Context, userID, listName, taskID string) error {
	uid, ok := parseID(userID)

	if !ok {
		return store.Wrap("RemoveTask", tasksTable, store.ErrNotFound)
	}

	db := s.db.WithContext(ctx)

	if tid, ok := parseID(taskID); ok {
		res := db.Where("id = ? AND list_id IN (?)", tid, s.ownedList(db, uid, listName)).
			Delete(&taskRecord{})

		if res.Error != nil {
			return translate("RemoveTask", tasksTable, res.Error)
		}

		if res.RowsAffected > 0 {
			return nil
		}
	}

	var count int64

	if err := db.Model(&listRecord{}).Where("user_id = ? AND name = ?", uid, listName).Count(&count).Error; err != nil {
		return translate("RemoveTask", listsTable, err)
	}

	if count == 0 {
		return store.Wrap("RemoveTask", listsTable, store.ErrNotFound)
	}

	return nil
}

func (s *Store) ownedList(db *gorm.DB, uid uint, name string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&listRecord{}).
		Select("id").
		Where("user_id = ? AND name = ?", uid, name)
}

func toList(record listRecord) models.List {
	tasks := make([]models.Task, 0, len(record.Tasks))

	for _, task := range record.Tasks {
		tasks = append(tasks, models.Task{ID: formatID(task.ID), Name: task.Name})
	}

	return models.List{
		ID:        formatID(record.ID),
		UserID:    formatID(record.UserID),
		Name:      record.Name,
		Tasks:     tasks,
		CreatedAt: record.CreatedAt,
	}
}

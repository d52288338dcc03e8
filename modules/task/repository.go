package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mmmtweb2/TodoApp/domain/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists the tables the task store migrates.
var Models = []any{&domain.Task{}, &domain.Share{}, &domain.SubTask{}}

// TaskRepository persists tasks together with their shares and sub-tasks.
// Every write runs in one transaction.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SharedWith", func(db *gorm.DB) *gorm.DB {
			return db.Order("shared_at ASC, user_id ASC")
		}).
		Preload("SubTasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// Create inserts a new task and its children.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return insertChildren(tx, t)
	})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID loads a task with its shares and sub-tasks.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := withChildren(r.db.WithContext(ctx)).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	normalize(&t)
	return &t, nil
}

// ListOwned returns every task owned by ownerID, newest first.
func (r *TaskRepository) ListOwned(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := withChildren(r.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owned tasks: %w", err)
	}
	for _, t := range tasks {
		normalize(t)
	}
	return tasks, nil
}

// ListSharedWith returns every task that has a share for userID, newest first.
func (r *TaskRepository) ListSharedWith(ctx context.Context, userID string) ([]*domain.Task, error) {
	db := r.db.WithContext(ctx)
	recipients := db.Model(&domain.Share{}).Select("task_id").Where("user_id = ?", userID)

	var tasks []*domain.Task
	err := withChildren(db).
		Where("id IN (?)", recipients).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shared tasks: %w", err)
	}
	for _, t := range tasks {
		normalize(t)
	}
	return tasks, nil
}

// Save writes t if the stored version still equals t.Version, replacing its
// shares and sub-tasks, and advances t.Version. A concurrent writer that got
// there first yields ErrConflict; a vanished task yields ErrNotFound.
func (r *TaskRepository) Save(ctx context.Context, t *domain.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Task{}).
			Where("id = ? AND version = ?", t.ID, t.Version).
			Updates(map[string]any{
				"title":       t.Title,
				"description": t.Description,
				"status":      t.Status,
				"priority":    t.Priority,
				"category":    t.Category,
				"due_date":    t.DueDate,
				"due_time":    t.DueTime,
				"version":     t.Version + 1,
				"updated_at":  t.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.Task{}).Where("id = ?", t.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrConflict
		}

		if err := tx.Where("task_id = ?", t.ID).Delete(&domain.Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", t.ID).Delete(&domain.SubTask{}).Error; err != nil {
			return err
		}
		return insertChildren(tx, t)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to save task: %w", err)
	}
	t.Version++
	return nil
}

// DeleteOwned removes the task only if ownerID owns it and returns the
// deleted snapshot. Absent and not-owned tasks both yield ErrNotFound.
func (r *TaskRepository) DeleteOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	var deleted domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withChildren(tx).First(&deleted, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&domain.Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&domain.SubTask{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	normalize(&deleted)
	return &deleted, nil
}

func insertChildren(tx *gorm.DB, t *domain.Task) error {
	if len(t.SharedWith) > 0 {
		for i := range t.SharedWith {
			t.SharedWith[i].TaskID = t.ID
		}
		if err := tx.Create(&t.SharedWith).Error; err != nil {
			return err
		}
	}
	if len(t.SubTasks) > 0 {
		for i := range t.SubTasks {
			t.SubTasks[i].ID = 0
			t.SubTasks[i].TaskID = t.ID
			t.SubTasks[i].Position = i
		}
		if err := tx.Create(&t.SubTasks).Error; err != nil {
			return err
		}
	}
	return nil
}

// normalize replaces nil child slices so tasks always serialize as [].
func normalize(t *domain.Task) {
	if t.SharedWith == nil {
		t.SharedWith = []domain.Share{}
	}
	if t.SubTasks == nil {
		t.SubTasks = []domain.SubTask{}
	}
}

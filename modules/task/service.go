package task

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	domain "github.com/mmmtweb2/TodoApp/domain/task"
	"github.com/mmmtweb2/TodoApp/domain/user"
	"github.com/mmmtweb2/TodoApp/events"
)

// Directory resolves user identities for sharing and display.
type Directory interface {
	ResolveEmails(ctx context.Context, emails []string) ([]user.Identity, error)
	LookupUsers(ctx context.Context, ids []string) ([]user.Identity, error)
}

// EventPublisher announces task changes. Delivery is best-effort.
type EventPublisher interface {
	TaskCreated(event events.TaskCreatedEvent)
	TaskUpdated(event events.TaskUpdatedEvent)
	TaskShared(event events.TaskSharedEvent)
	SharePermissionChanged(event events.SharePermissionChangedEvent)
	ShareRevoked(event events.ShareRevokedEvent)
	TaskDeleted(event events.TaskDeletedEvent)
}

// TaskService implements the task use cases on top of the repository and
// the authorization rules in the domain package.
type TaskService struct {
	repo      *TaskRepository
	directory Directory
	events    EventPublisher
	logger    types.Logger
	now       func() time.Time
	newID     func() string
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *TaskRepository, directory Directory, publisher EventPublisher, logger types.Logger) *TaskService {
	return &TaskService{
		repo:      repo,
		directory: directory,
		events:    publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// CreateTask creates a task owned by actorID.
func (s *TaskService) CreateTask(ctx context.Context, actorID string, fields domain.Fields) (*TaskView, error) {
	t, err := domain.NewTask(s.newID(), actorID, fields, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.events.TaskCreated(events.TaskCreatedEvent{
		TaskID:    t.ID,
		Title:     t.Title,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt,
	})
	return s.resolveOne(ctx, t), nil
}

// GetTask returns a task the actor may view. Tasks the actor cannot see are
// reported as not found.
func (s *TaskService) GetTask(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(t, actorID) {
		return nil, domain.ErrNotFound
	}
	return s.resolveOne(ctx, t), nil
}

// ListOwned returns the actor's own tasks, filtered and sorted.
func (s *TaskService) ListOwned(ctx context.Context, actorID string, filter domain.Filter) ([]TaskView, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListOwned(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, filter.Apply(tasks)), nil
}

// ListSharedWithMe returns tasks other users shared with the actor.
func (s *TaskService) ListSharedWithMe(ctx context.Context, actorID string, filter domain.Filter) ([]TaskView, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListSharedWith(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, filter.Apply(tasks)), nil
}

// UpdateTask applies a partial update. A non-zero expectedVersion must match
// the stored version.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID string, patch domain.Patch, expectedVersion int64) (*TaskView, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return s.mutateContent(ctx, actorID, taskID, expectedVersion, patch.ApplyTo)
}

// AdvanceStatus moves the task one step along the status cycle.
func (s *TaskService) AdvanceStatus(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	return s.mutateContent(ctx, actorID, taskID, 0, func(t *domain.Task) error {
		t.Status = t.Status.Next()
		return nil
	})
}

func (s *TaskService) mutateContent(ctx context.Context, actorID, taskID string, expectedVersion int64, apply func(*domain.Task) error) (*TaskView, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(t, actorID) {
		return nil, domain.ErrUnauthorized
	}
	if expectedVersion != 0 && expectedVersion != t.Version {
		return nil, domain.ErrConflict
	}
	if err := apply(t); err != nil {
		return nil, err
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.events.TaskUpdated(events.TaskUpdatedEvent{
		TaskID:    t.ID,
		Title:     t.Title,
		OwnerID:   t.OwnerID,
		ActorID:   actorID,
		Status:    string(t.Status),
		UpdatedAt: t.UpdatedAt,
	})
	return s.resolveOne(ctx, t), nil
}

// DeleteTask removes a task owned by the actor. A task that does not exist
// and a task the actor does not own are indistinguishable.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID string) error {
	deleted, err := s.repo.DeleteOwned(ctx, taskID, actorID)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(deleted.SharedWith))
	for _, share := range deleted.SharedWith {
		recipients = append(recipients, share.UserID)
	}
	s.events.TaskDeleted(events.TaskDeletedEvent{
		TaskID:       deleted.ID,
		Title:        deleted.Title,
		OwnerID:      deleted.OwnerID,
		RecipientIDs: recipients,
		DeletedAt:    s.now(),
	})
	return nil
}

// ShareTask grants permission to the users registered under emails.
func (s *TaskService) ShareTask(ctx context.Context, actorID, taskID string, emails []string, permission domain.Permission) (*TaskView, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	// Checked before the directory is consulted so non-sharers cannot learn
	// which emails are registered.
	if !domain.CanShare(t, actorID) {
		return nil, domain.ErrUnauthorized
	}

	found, err := s.directory.ResolveEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(found) == 0 {
		return nil, domain.ErrNoRecipientsFound
	}
	recipients := make([]string, 0, len(found))
	for _, id := range found {
		recipients = append(recipients, id.ID)
	}

	now := s.now()
	added, err := domain.AddShares(t, actorID, recipients, permission, now)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	addedIDs := make([]string, 0, len(added))
	for _, share := range added {
		addedIDs = append(addedIDs, share.UserID)
	}
	s.events.TaskShared(events.TaskSharedEvent{
		TaskID:       t.ID,
		Title:        t.Title,
		ActorID:      actorID,
		RecipientIDs: addedIDs,
		Permission:   string(added[0].Permission),
		SharedAt:     now,
	})
	return s.resolveOne(ctx, t), nil
}

// UpdateShare changes one recipient's permission.
func (s *TaskService) UpdateShare(ctx context.Context, actorID, taskID, targetUserID string, permission domain.Permission) (*TaskView, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := domain.UpdateSharePermission(t, actorID, targetUserID, permission); err != nil {
		return nil, err
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.events.SharePermissionChanged(events.SharePermissionChangedEvent{
		TaskID:      t.ID,
		Title:       t.Title,
		ActorID:     actorID,
		RecipientID: targetUserID,
		Permission:  string(permission),
		ChangedAt:   t.UpdatedAt,
	})
	return s.resolveOne(ctx, t), nil
}

// RemoveShare revokes one recipient's access.
func (s *TaskService) RemoveShare(ctx context.Context, actorID, taskID, targetUserID string) (*TaskView, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := domain.RemoveShare(t, actorID, targetUserID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.events.ShareRevoked(events.ShareRevokedEvent{
		TaskID:      t.ID,
		Title:       t.Title,
		ActorID:     actorID,
		RecipientID: targetUserID,
		RevokedAt:   t.UpdatedAt,
	})
	// A recipient who removed their own share can no longer read the task.
	if !domain.CanView(t, actorID) {
		return nil, nil
	}
	return s.resolveOne(ctx, t), nil
}

// CheckPermission reports what the actor may do with a task.
func (s *TaskService) CheckPermission(ctx context.Context, actorID, taskID string) (domain.Permissions, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return domain.Permissions{}, err
	}
	return domain.PermissionsFor(t, actorID), nil
}

// Stats summarises every task the actor owns or has been shared.
func (s *TaskService) Stats(ctx context.Context, actorID string) (domain.Stats, error) {
	owned, err := s.repo.ListOwned(ctx, actorID)
	if err != nil {
		return domain.Stats{}, err
	}
	shared, err := s.repo.ListSharedWith(ctx, actorID)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(append(owned, shared...), s.now()), nil
}

func (s *TaskService) save(ctx context.Context, t *domain.Task) error {
	t.Touch(s.now())
	return s.repo.Save(ctx, t)
}

func (s *TaskService) resolveOne(ctx context.Context, t *domain.Task) *TaskView {
	views := s.resolve(ctx, []*domain.Task{t})
	return &views[0]
}

// resolve expands owner and recipient ids into display identities with a
// single directory lookup. Lookup failures degrade to bare ids.
func (s *TaskService) resolve(ctx context.Context, tasks []*domain.Task) []TaskView {
	seen := map[string]bool{}
	var ids []string
	for _, t := range tasks {
		if !seen[t.OwnerID] {
			seen[t.OwnerID] = true
			ids = append(ids, t.OwnerID)
		}
		for _, share := range t.SharedWith {
			if !seen[share.UserID] {
				seen[share.UserID] = true
				ids = append(ids, share.UserID)
			}
		}
	}

	identities := map[string]user.Identity{}
	if len(ids) > 0 {
		found, err := s.directory.LookupUsers(ctx, ids)
		if err != nil {
			s.logger.Warn("Identity lookup failed, returning bare ids", "error", err, "count", len(ids))
		}
		for _, id := range found {
			identities[id.ID] = id
		}
	}
	identity := func(id string) user.Identity {
		if found, ok := identities[id]; ok {
			return found
		}
		return user.Identity{ID: id}
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		shares := make([]ShareView, 0, len(t.SharedWith))
		for _, share := range t.SharedWith {
			who := identity(share.UserID)
			shares = append(shares, ShareView{
				UserID:     share.UserID,
				Email:      who.Email,
				Name:       who.Name,
				Permission: share.Permission,
				SharedAt:   share.SharedAt,
			})
		}
		subTasks := t.SubTasks
		if subTasks == nil {
			subTasks = []domain.SubTask{}
		}
		views = append(views, TaskView{
			ID:                   t.ID,
			Title:                t.Title,
			Description:          t.Description,
			Status:               t.Status,
			Priority:             t.Priority,
			Category:             t.Category,
			DueDate:              t.DueDate,
			DueTime:              t.DueTime,
			OwnerID:              t.OwnerID,
			Owner:                identity(t.OwnerID),
			SharedWith:           shares,
			SubTasks:             subTasks,
			CompletionPercentage: t.CompletionPercentage(),
			Version:              t.Version,
			CreatedAt:            t.CreatedAt,
			UpdatedAt:            t.UpdatedAt,
		})
	}
	return views
}

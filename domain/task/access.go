package task

import (
	"fmt"
	"slices"
	"time"
)

// CanView reports whether actorID may read the task.
func CanView(t *Task, actorID string) bool {
	if t.IsOwner(actorID) {
		return true
	}
	_, ok := t.ShareFor(actorID)
	return ok
}

// CanEdit reports whether actorID may change the task's content fields.
func CanEdit(t *Task, actorID string) bool {
	if t.IsOwner(actorID) {
		return true
	}
	share, ok := t.ShareFor(actorID)
	return ok && share.Permission.AllowsEdit()
}

// CanShare reports whether actorID may add, change or remove shares.
func CanShare(t *Task, actorID string) bool {
	if t.IsOwner(actorID) {
		return true
	}
	share, ok := t.ShareFor(actorID)
	return ok && share.Permission.AllowsShare()
}

// CanDelete reports whether actorID may delete the task. Only the owner can.
func CanDelete(t *Task, actorID string) bool {
	return t.IsOwner(actorID)
}

// Permissions summarises what an actor may do with a task.
type Permissions struct {
	IsOwner    bool       `json:"isOwner"`
	CanView    bool       `json:"canView"`
	CanEdit    bool       `json:"canEdit"`
	CanShare   bool       `json:"canShare"`
	CanDelete  bool       `json:"canDelete"`
	Permission Permission `json:"permission,omitempty"`
}

// PermissionsFor evaluates every check for actorID at once. Permission is
// ADMIN for the owner, the share's tier for a recipient and empty otherwise.
func PermissionsFor(t *Task, actorID string) Permissions {
	p := Permissions{
		IsOwner:   t.IsOwner(actorID),
		CanView:   CanView(t, actorID),
		CanEdit:   CanEdit(t, actorID),
		CanShare:  CanShare(t, actorID),
		CanDelete: CanDelete(t, actorID),
	}
	switch share, ok := t.ShareFor(actorID); {
	case p.IsOwner:
		p.Permission = PermissionAdmin
	case ok:
		p.Permission = share.Permission
	}
	return p
}

// AddShares grants permission to every recipient that does not already have
// access. The owner, existing recipients and repeats within the batch are
// skipped one by one; the call fails with ErrAlreadyShared only when nothing
// is left to add. The task is modified in place and the added shares are
// returned.
func AddShares(t *Task, actorID string, recipients []string, permission Permission, now time.Time) ([]Share, error) {
	if !CanShare(t, actorID) {
		return nil, ErrUnauthorized
	}
	if permission == "" {
		permission = PermissionView
	}
	if !permission.Valid() {
		return nil, fmt.Errorf("%w: unknown permission %q", ErrValidation, permission)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipientsFound
	}

	var added []Share
	for _, userID := range recipients {
		if userID == "" || t.IsOwner(userID) {
			continue
		}
		if _, ok := t.ShareFor(userID); ok {
			continue
		}
		share := Share{
			TaskID:     t.ID,
			UserID:     userID,
			Permission: permission,
			SharedAt:   now,
		}
		t.SharedWith = append(t.SharedWith, share)
		added = append(added, share)
	}
	if len(added) == 0 {
		return nil, ErrAlreadyShared
	}
	return added, nil
}

// UpdateSharePermission replaces the permission held by targetUserID.
func UpdateSharePermission(t *Task, actorID, targetUserID string, permission Permission) error {
	if !CanShare(t, actorID) {
		return ErrUnauthorized
	}
	if !permission.Valid() {
		return fmt.Errorf("%w: unknown permission %q", ErrValidation, permission)
	}
	share, ok := t.ShareFor(targetUserID)
	if !ok {
		return ErrShareNotFound
	}
	share.Permission = permission
	return nil
}

// RemoveShare revokes targetUserID's access. Removing a share that does not
// exist is an error, not a no-op.
func RemoveShare(t *Task, actorID, targetUserID string) error {
	if !CanShare(t, actorID) {
		return ErrUnauthorized
	}
	idx := slices.IndexFunc(t.SharedWith, func(s Share) bool {
		return s.UserID == targetUserID
	})
	if idx < 0 {
		return ErrShareNotFound
	}
	t.SharedWith = slices.Delete(t.SharedWith, idx, idx+1)
	return nil
}

package task

import (
	"errors"
	"testing"
	"time"
)

func sampleTask() *Task {
	return &Task{
		ID:      "task-1",
		OwnerID: "owner",
		Title:   "Buy milk",
		SharedWith: []Share{
			{TaskID: "task-1", UserID: "viewer", Permission: PermissionView},
			{TaskID: "task-1", UserID: "editor", Permission: PermissionEdit},
			{TaskID: "task-1", UserID: "admin", Permission: PermissionAdmin},
		},
	}
}

func TestAccessChecks(t *testing.T) {
	tests := []struct {
		actor     string
		canView   bool
		canEdit   bool
		canShare  bool
		canDelete bool
	}{
		{actor: "owner", canView: true, canEdit: true, canShare: true, canDelete: true},
		{actor: "admin", canView: true, canEdit: true, canShare: true, canDelete: false},
		{actor: "editor", canView: true, canEdit: true, canShare: false, canDelete: false},
		{actor: "viewer", canView: true, canEdit: false, canShare: false, canDelete: false},
		{actor: "stranger", canView: false, canEdit: false, canShare: false, canDelete: false},
		{actor: "", canView: false, canEdit: false, canShare: false, canDelete: false},
	}

	task := sampleTask()
	for _, tt := range tests {
		t.Run(tt.actor, func(t *testing.T) {
			if got := CanView(task, tt.actor); got != tt.canView {
				t.Errorf("CanView() = %v, want %v", got, tt.canView)
			}
			if got := CanEdit(task, tt.actor); got != tt.canEdit {
				t.Errorf("CanEdit() = %v, want %v", got, tt.canEdit)
			}
			if got := CanShare(task, tt.actor); got != tt.canShare {
				t.Errorf("CanShare() = %v, want %v", got, tt.canShare)
			}
			if got := CanDelete(task, tt.actor); got != tt.canDelete {
				t.Errorf("CanDelete() = %v, want %v", got, tt.canDelete)
			}
		})
	}
}

func TestPermissionsFor(t *testing.T) {
	task := sampleTask()

	owner := PermissionsFor(task, "owner")
	if !owner.IsOwner || owner.Permission != PermissionAdmin {
		t.Errorf("owner permissions = %+v", owner)
	}

	editor := PermissionsFor(task, "editor")
	if editor.IsOwner || editor.Permission != PermissionEdit || !editor.CanEdit || editor.CanShare {
		t.Errorf("editor permissions = %+v", editor)
	}

	stranger := PermissionsFor(task, "stranger")
	if stranger.CanView || stranger.Permission != "" {
		t.Errorf("stranger permissions = %+v", stranger)
	}
}

func TestAddShares(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("owner adds new recipients", func(t *testing.T) {
		task := &Task{ID: "t", OwnerID: "owner"}
		added, err := AddShares(task, "owner", []string{"a", "b"}, PermissionEdit, now)
		if err != nil {
			t.Fatalf("AddShares() error = %v", err)
		}
		if len(added) != 2 || len(task.SharedWith) != 2 {
			t.Fatalf("added %d shares, task has %d, want 2 and 2", len(added), len(task.SharedWith))
		}
		for _, s := range task.SharedWith {
			if s.Permission != PermissionEdit {
				t.Errorf("share %s permission = %s, want EDIT", s.UserID, s.Permission)
			}
			if !s.SharedAt.Equal(now) {
				t.Errorf("share %s sharedAt = %v, want %v", s.UserID, s.SharedAt, now)
			}
		}
	})

	t.Run("existing recipient is skipped and keeps its permission", func(t *testing.T) {
		task := &Task{ID: "t", OwnerID: "owner", SharedWith: []Share{
			{UserID: "a", Permission: PermissionView},
		}}
		added, err := AddShares(task, "owner", []string{"a", "b"}, PermissionEdit, now)
		if err != nil {
			t.Fatalf("AddShares() error = %v", err)
		}
		if len(added) != 1 || added[0].UserID != "b" {
			t.Fatalf("added = %+v, want only b", added)
		}
		a, _ := task.ShareFor("a")
		if a.Permission != PermissionView {
			t.Errorf("a permission = %s, want VIEW", a.Permission)
		}
	})

	t.Run("all recipients already shared", func(t *testing.T) {
		task := &Task{ID: "t", OwnerID: "owner", SharedWith: []Share{
			{UserID: "a", Permission: PermissionView},
			{UserID: "b", Permission: PermissionView},
		}}
		_, err := AddShares(task, "owner", []string{"a", "b"}, PermissionEdit, now)
		if !errors.Is(err, ErrAlreadyShared) {
			t.Fatalf("AddShares() error = %v, want ErrAlreadyShared", err)
		}
		if len(task.SharedWith) != 2 {
			t.Errorf("task has %d shares, want 2", len(task.SharedWith))
		}
	})

	t.Run("owner is never added as a recipient", func(t *testing.T) {
		task := &Task{ID: "t", OwnerID: "owner"}
		_, err := AddShares(task, "owner", []string{"owner"}, PermissionView, now)
		if !errors.Is(err, ErrAlreadyShared) {
			t.Fatalf("AddShares() error = %v, want ErrAlreadyShared", err)
		}
	})

	t.Run("duplicates within one batch collapse", func(t *testing.T) {
		task := &Task{ID: "t", OwnerID: "owner"}
		added, err := AddShares(task, "owner", []string{"a", "a"}, PermissionView, now)
		if err != nil {
			t.Fatalf("AddShares() error = %v", err)
		}
		if len(added) != 1 || len(task.SharedWith) != 1 {
			t.Errorf("got %d added, %d stored, want 1 and 1", len(added), len(task.SharedWith))
		}
	})

	t.Run("default permission is VIEW", func(t *testing.T) {
		task := &Task{ID: "t", OwnerID: "owner"}
		added, err := AddShares(task, "owner", []string{"a"}, "", now)
		if err != nil {
			t.Fatalf("AddShares() error = %v", err)
		}
		if added[0].Permission != PermissionView {
			t.Errorf("permission = %s, want VIEW", added[0].Permission)
		}
	})

	t.Run("admin collaborator may share", func(t *testing.T) {
		task := sampleTask()
		if _, err := AddShares(task, "admin", []string{"new"}, PermissionView, now); err != nil {
			t.Fatalf("AddShares() error = %v", err)
		}
	})

	t.Run("editor may not share", func(t *testing.T) {
		task := sampleTask()
		_, err := AddShares(task, "editor", []string{"new"}, PermissionView, now)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("AddShares() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("empty recipient list", func(t *testing.T) {
		task := sampleTask()
		_, err := AddShares(task, "owner", nil, PermissionView, now)
		if !errors.Is(err, ErrNoRecipientsFound) {
			t.Fatalf("AddShares() error = %v, want ErrNoRecipientsFound", err)
		}
	})

	t.Run("unknown permission", func(t *testing.T) {
		task := sampleTask()
		_, err := AddShares(task, "owner", []string{"new"}, Permission("OWNER"), now)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("AddShares() error = %v, want ErrValidation", err)
		}
	})
}

func TestUpdateSharePermission(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		target     string
		permission Permission
		wantErr    error
	}{
		{name: "owner promotes viewer", actor: "owner", target: "viewer", permission: PermissionAdmin},
		{name: "admin demotes editor", actor: "admin", target: "editor", permission: PermissionView},
		{name: "editor cannot change shares", actor: "editor", target: "viewer", permission: PermissionEdit, wantErr: ErrUnauthorized},
		{name: "missing target", actor: "owner", target: "stranger", permission: PermissionEdit, wantErr: ErrShareNotFound},
		{name: "invalid permission", actor: "owner", target: "viewer", permission: "ROOT", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := sampleTask()
			err := UpdateSharePermission(task, tt.actor, tt.target, tt.permission)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateSharePermission() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateSharePermission() error = %v", err)
			}
			share, _ := task.ShareFor(tt.target)
			if share.Permission != tt.permission {
				t.Errorf("permission = %s, want %s", share.Permission, tt.permission)
			}
			if len(task.SharedWith) != 3 {
				t.Errorf("share count = %d, want 3", len(task.SharedWith))
			}
		})
	}
}

func TestRemoveShare(t *testing.T) {
	t.Run("revocation removes view access", func(t *testing.T) {
		task := sampleTask()
		if err := RemoveShare(task, "owner", "viewer"); err != nil {
			t.Fatalf("RemoveShare() error = %v", err)
		}
		if CanView(task, "viewer") {
			t.Error("viewer can still view after revocation")
		}
		if len(task.SharedWith) != 2 {
			t.Errorf("share count = %d, want 2", len(task.SharedWith))
		}
	})

	t.Run("absent share is an error", func(t *testing.T) {
		task := sampleTask()
		if err := RemoveShare(task, "owner", "stranger"); !errors.Is(err, ErrShareNotFound) {
			t.Fatalf("RemoveShare() error = %v, want ErrShareNotFound", err)
		}
	})

	t.Run("viewer cannot remove", func(t *testing.T) {
		task := sampleTask()
		if err := RemoveShare(task, "viewer", "editor"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("RemoveShare() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("admin may remove itself", func(t *testing.T) {
		task := sampleTask()
		if err := RemoveShare(task, "admin", "admin"); err != nil {
			t.Fatalf("RemoveShare() error = %v", err)
		}
		if CanShare(task, "admin") {
			t.Error("admin still holds share rights")
		}
	})
}

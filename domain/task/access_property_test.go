package task

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var (
	propUsers       = []string{"owner", "u1", "u2", "u3", "u4", "u5"}
	propPermissions = []Permission{PermissionView, PermissionEdit, PermissionAdmin}
)

// drawTask builds a task owned by "owner" with a random, duplicate-free share list.
func drawTask(rt *rapid.T) *Task {
	t := &Task{ID: "prop", OwnerID: "owner"}
	for _, u := range propUsers[1:] {
		if rapid.Bool().Draw(rt, "shared_"+u) {
			t.SharedWith = append(t.SharedWith, Share{
				TaskID:     t.ID,
				UserID:     u,
				Permission: rapid.SampledFrom(propPermissions).Draw(rt, "perm_"+u),
			})
		}
	}
	return t
}

func assertShareInvariants(rt *rapid.T, t *Task) {
	seen := map[string]bool{}
	for _, s := range t.SharedWith {
		if seen[s.UserID] {
			rt.Fatalf("duplicate share for %s", s.UserID)
		}
		seen[s.UserID] = true
		if s.UserID == t.OwnerID {
			rt.Fatalf("owner %s appears in share list", s.UserID)
		}
		if !s.Permission.Valid() {
			rt.Fatalf("share %s has invalid permission %q", s.UserID, s.Permission)
		}
	}
}

// For any task and identity, CanView holds exactly for the owner and recipients.
func TestProperty_CanViewIffOwnerOrRecipient(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		actor := rapid.SampledFrom(append(propUsers, "outsider")).Draw(rt, "actor")

		_, recipient := task.ShareFor(actor)
		want := actor == task.OwnerID || recipient
		if got := CanView(task, actor); got != want {
			rt.Fatalf("CanView(%s) = %v, want %v", actor, got, want)
		}
	})
}

// Permission tiers nest: share rights imply edit rights imply view rights.
func TestProperty_TiersNest(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		actor := rapid.SampledFrom(propUsers).Draw(rt, "actor")

		if CanShare(task, actor) && !CanEdit(task, actor) {
			rt.Fatalf("%s can share but not edit", actor)
		}
		if CanEdit(task, actor) && !CanView(task, actor) {
			rt.Fatalf("%s can edit but not view", actor)
		}
		if CanDelete(task, actor) != (actor == task.OwnerID) {
			rt.Fatalf("CanDelete(%s) disagrees with ownership", actor)
		}
	})
}

// The share list stays duplicate-free and owner-free under any sequence of
// share mutations, and failed mutations leave the list untouched.
func TestProperty_ShareListInvariantsHold(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		steps := rapid.IntRange(1, 15).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			actor := rapid.SampledFrom(propUsers).Draw(rt, fmt.Sprintf("actor_%d", i))
			before := len(task.SharedWith)

			var err error
			switch rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("op_%d", i)) {
			case 0:
				recipients := rapid.SliceOfN(rapid.SampledFrom(propUsers), 1, 4).Draw(rt, fmt.Sprintf("recipients_%d", i))
				perm := rapid.SampledFrom(propPermissions).Draw(rt, fmt.Sprintf("perm_%d", i))
				_, err = AddShares(task, actor, recipients, perm, now)
			case 1:
				target := rapid.SampledFrom(propUsers).Draw(rt, fmt.Sprintf("target_%d", i))
				perm := rapid.SampledFrom(propPermissions).Draw(rt, fmt.Sprintf("perm_%d", i))
				err = UpdateSharePermission(task, actor, target, perm)
			case 2:
				target := rapid.SampledFrom(propUsers).Draw(rt, fmt.Sprintf("target_%d", i))
				err = RemoveShare(task, actor, target)
				if err == nil {
					if CanView(task, target) && target != task.OwnerID {
						rt.Fatalf("%s can still view after removal", target)
					}
				}
			}

			if err != nil && len(task.SharedWith) != before {
				rt.Fatalf("failed mutation changed share count from %d to %d: %v", before, len(task.SharedWith), err)
			}
			assertShareInvariants(rt, task)
		}
	})
}

// Only the owner and ADMIN recipients can mutate shares.
func TestProperty_NonAdminCannotShare(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		actor := rapid.SampledFrom(propUsers[1:]).Draw(rt, "actor")
		if share, ok := task.ShareFor(actor); ok && share.Permission == PermissionAdmin {
			return
		}

		if _, err := AddShares(task, actor, []string{"u9"}, PermissionView, time.Now()); err != ErrUnauthorized {
			rt.Fatalf("AddShares by %s error = %v, want ErrUnauthorized", actor, err)
		}
	})
}

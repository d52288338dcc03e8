package task

import (
	"context"

	"github.com/mmmtweb2/TodoApp/domain/user"
)

// IdentityCache fronts identity lookups. load is called with the ids the
// cache could not answer.
type IdentityCache interface {
	Lookup(ctx context.Context, ids []string, load func(ctx context.Context, ids []string) ([]user.Identity, error)) ([]user.Identity, error)
}

// cachedDirectory routes LookupUsers through an IdentityCache. Email
// resolution always goes to the directory so new accounts are found at once.
type cachedDirectory struct {
	Directory
	cache IdentityCache
}

func (d cachedDirectory) LookupUsers(ctx context.Context, ids []string) ([]user.Identity, error) {
	return d.cache.Lookup(ctx, ids, d.Directory.LookupUsers)
}

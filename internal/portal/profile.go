package portal

import (
	"context"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/session"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// UpdateProfile pushes profile edits to the repository and mirrors the
// result into the session store. When the authoritative update fails the
// edits are still merged into the stored snapshot, so a transient backend
// error never discards what the user typed. The returned error reports the
// repository failure; the returned user reflects the session either way.
func UpdateProfile(ctx context.Context, repo Repository, store *session.Store, current types.User, params types.UpdateUserParams) (*types.User, error) {
	updated, err := repo.UpdateUser(ctx, current.ID, params)
	if err != nil {
		merged := current.Apply(params)
		store.Patch(merged)
		return &merged, err
	}
	store.Patch(*updated)
	return updated, nil
}

package service

import (
	"context"
	"errors"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/repository"
	"gorm.io/gorm"
)

// provisionUser returns the users row for seed.UserID, inserting seed when there is none.
// A row inserted into an empty table becomes admin; any other inserted row gets
// defaultRole. It must run inside the caller's transaction.
func provisionUser(ctx context.Context, users repository.UserRepository, seed *model.User, defaultRole model.Role) (*model.User, bool, error) {
	existing, err := users.FindByExternalID(ctx, seed.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := users.LockForProvisioning(ctx); err != nil {
		return nil, false, err
	}

	count, err := users.Count(ctx)
	if err != nil {
		return nil, false, err
	}

	seed.Role = defaultRole
	if count == 0 {
		seed.Role = model.RoleAdmin
	}

	created, err := users.CreateIfAbsent(ctx, seed)
	if err != nil {
		return nil, false, err
	}
	if created {
		return seed, true, nil
	}

	// Another invocation inserted the same user between our lookup and insert.
	existing, err = users.FindByExternalID(ctx, seed.UserID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

package cascade

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
)

// Deleter runs whole cascades in their own transaction: lock the root,
// check the caller may delete it, enumerate dependents, plan and execute.
type Deleter struct {
	store    repository.Store
	executor *Executor
}

// NewDeleter creates a Deleter over store.
func NewDeleter(store repository.Store) *Deleter {
	return &Deleter{store: store, executor: NewExecutor()}
}

// DeletePost removes a post and its dependents. authorize runs against the
// locked row and may veto the deletion; nil allows it.
func (d *Deleter) DeletePost(ctx context.Context, postID uint, authorize func(*models.Post) error) (Result, error) {
	var res Result
	err := d.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().LockByID(ctx, postID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(post); err != nil {
				return err
			}
		}
		res, err = d.executor.Run(ctx, tx, PlanPostDeletion(postID))
		return err
	})
	if err != nil {
		return Result{}, wrapStoreError(err)
	}
	return res, nil
}

// DeleteUser removes a user, every post they own and every relationship they
// take part in. Owned posts are locked together with the user row.
func (d *Deleter) DeleteUser(ctx context.Context, userID uint, authorize func(*models.User) error) (Result, error) {
	var res Result
	err := d.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(user); err != nil {
				return err
			}
		}
		postIDs, err := tx.Posts().LockIDsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		res, err = d.executor.Run(ctx, tx, PlanUserDeletion(userID, postIDs))
		return err
	})
	if err != nil {
		return Result{}, wrapStoreError(err)
	}
	return res, nil
}

// wrapStoreError keeps AppErrors and turns commit or driver failures into INTERNAL_ERROR.
func wrapStoreError(err error) error {
	if models.ErrorCode(err) == models.CodeInternal && !models.IsCode(err, models.CodeInternal) {
		return models.NewInternalError(err)
	}
	return err
}

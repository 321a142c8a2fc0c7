// Package repository declares the storage contracts the service layer
// depends on. Implementations live in sub-packages (see sqlstore).
package repository

import (
	"context"

	"github.com/sakif/taskboard/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts the user and fills in ID and CreatedAt.
	// A duplicate username or email yields an apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	// GetByEmail returns apperror.ErrNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

// TaskUpdate carries the resolved column changes for a task update.
// A nil field leaves the column as it is.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskRepository is the task store. Every method is scoped by owner: a task
// that exists but belongs to another user behaves exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, userID, id int64) (*model.Task, error)
	// ListByUser returns the owner's tasks, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Task, error)
	// Update applies the changes in one conditional statement and returns
	// apperror.ErrNotFound if no row matched id and owner.
	Update(ctx context.Context, userID, id int64, upd TaskUpdate) error
	// Delete returns apperror.ErrNotFound if no row matched id and owner.
	Delete(ctx context.Context, userID, id int64) error
}

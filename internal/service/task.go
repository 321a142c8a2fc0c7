// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// THE DEPENDENCY CHAIN:
//
//	server.New creates:  DB → Repository → Service → Handler
//	At runtime:          Handler calls Service calls Repository calls DB
//
// TaskService takes a repository.TaskRepository (interface), NOT a
// *sqlstore.TaskStore. In tests a hand-written fake is passed instead, and
// the service never imports the storage package.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// MsgTitleRequired is returned when a task is created without a title.
const MsgTitleRequired = "Title is required"

// TaskService handles business logic for tasks.
//
// Every method takes the caller's userID first. The service never reads or
// writes a task without it, and the repository turns "not yours" into
// "not found".
type TaskService struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// CreateTaskInput is what a client submits to create a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// List returns the caller's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID int64) ([]model.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return tasks, nil
}

// Get returns one of the caller's tasks.
// Returns apperror.ErrNotFound if it doesn't exist or belongs to someone else.
func (s *TaskService) Get(ctx context.Context, userID, id int64) (*model.Task, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Create validates and saves a new task owned by userID.
//
// The returned record is what was submitted plus the id and creation time
// the store assigned. It is not read back from the database.
func (s *TaskService) Create(ctx context.Context, userID int64, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", MsgTitleRequired)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.DefaultTaskStatus
	}

	task := &model.Task{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Status:      status,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("task created",
		slog.Int64("taskID", task.ID),
		slog.Int64("userID", userID),
	)

	return task, nil
}

// Update applies patch to one of the caller's tasks.
//
// FIELD RULES:
//   - title, status: omitted or empty → keep the current value
//   - description: omitted → keep; sent (even "") → replace
//
// The rules are resolved here into a repository.TaskUpdate, and the store
// applies it in a single conditional UPDATE. There is no read first, so a
// concurrent delete can't slip in between a check and the write.
func (s *TaskService) Update(ctx context.Context, userID, id int64, patch model.TaskPatch) error {
	upd := repository.TaskUpdate{
		Title:       nonEmpty(patch.Title),
		Description: patch.Description,
		Status:      nonEmpty(patch.Status),
	}

	if err := s.repo.Update(ctx, userID, id, upd); err != nil {
		return err
	}

	s.logger.Info("task updated",
		slog.Int64("taskID", id),
		slog.Int64("userID", userID),
	)
	return nil
}

// Delete removes one of the caller's tasks.
// Returns apperror.ErrNotFound if nothing matched, including a repeat delete.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("task deleted",
		slog.Int64("taskID", id),
		slog.Int64("userID", userID),
	)
	return nil
}

// nonEmpty returns the trimmed value, or nil when p is nil or blank.
func nonEmpty(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

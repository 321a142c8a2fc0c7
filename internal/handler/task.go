package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/service"
)

// TaskManager is the slice of *service.TaskService the handler needs.
type TaskManager interface {
	List(ctx context.Context, userID int64) ([]model.Task, error)
	Get(ctx context.Context, userID, id int64) (*model.Task, error)
	Create(ctx context.Context, userID int64, in service.CreateTaskInput) (*model.Task, error)
	Update(ctx context.Context, userID, id int64, patch model.TaskPatch) error
	Delete(ctx context.Context, userID, id int64) error
}

// TaskHandler serves the caller's tasks. Every route sits behind
// auth.RequireAuth, so the owner always comes from the verified token and
// never from the request body or URL.
type TaskHandler struct {
	tasks  TaskManager
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks TaskManager, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// HandleList returns the caller's tasks, newest first.
//
// HTTP: GET /api/tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", tasks)
}

// HandleGet returns one task.
//
// HTTP: GET /api/tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", task)
}

// HandleCreate adds a task for the caller.
//
// HTTP: POST /api/tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Task created successfully", task)
}

// HandleUpdate changes the fields present in the body.
//
// HTTP: PUT /api/tasks/{id}
//
// The body decodes straight into model.TaskPatch, whose pointer fields
// remember which keys the client actually sent.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndTaskID(w, r)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	if err := h.tasks.Update(r.Context(), userID, id, patch); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Task updated successfully", nil)
}

// HandleDelete removes a task.
//
// HTTP: DELETE /api/tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}

// caller returns the authenticated user's id. The middleware guarantees it
// is present; a missing identity means the route was mounted without it.
func (h *TaskHandler) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Error("task route reached without an identity", slog.String("path", r.URL.Path))
		writeFailure(w, http.StatusUnauthorized, auth.MsgNoToken)
		return 0, false
	}
	return userID, true
}

// callerAndTaskID also parses {id}. An id that isn't a positive integer
// can't name any task, so it gets the same 404 as a missing one.
func (h *TaskHandler) callerAndTaskID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := h.caller(w, r)
	if !ok {
		return 0, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, apperror.NotFound("Task"))
		return 0, 0, false
	}
	return userID, id, true
}

package model

import "time"

// DefaultTaskStatus is applied when a task is created without a status.
// The status set is open: any non-empty string is accepted.
const DefaultTaskStatus = "pending"

// Task is a single to-do record. Every task belongs to exactly one user
// (UserID) and is only visible through that user's identity.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize
// this struct. For example:
//
//	task := Task{ID: 7, Title: "buy milk"}
//	json.Marshal(task) → {"id":7,"userId":0,"title":"buy milk",...}
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskPatch describes a partial update.
//
// POINTER FIELDS:
// A nil pointer means "the client did not send this field". A non-nil pointer
// to "" means "the client sent an empty string". Plain strings can't tell
// those two apart, which matters for Description: sending "" clears it,
// omitting it leaves it alone.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

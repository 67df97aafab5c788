package httpapi

import (
	"encoding/json"
	"time"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type createProjectRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	Color      *string `json:"color" binding:"omitempty,hexcolor,len=7"`
	IsFavorite *bool   `json:"isFavorite"`
}

type updateProjectRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color      *string `json:"color" binding:"omitempty,hexcolor,len=7"`
	IsFavorite *bool   `json:"isFavorite"`
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Priority    *int       `json:"priority" binding:"omitempty,min=1,max=4"`
	DueDate     *time.Time `json:"dueDate"`
	ProjectID   *string    `json:"projectId"`
	Tags        []string   `json:"tags"`
}

// optionalString distinguishes a JSON field that was set to null from one
// that was absent, which a plain pointer cannot express. Needed for partial
// patches that clear nullable fields.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// updateTaskRequest deliberately has no completedAt field: the task service
// recomputes it on every completion transition and client input is ignored.
type updateTaskRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string        `json:"description" binding:"omitempty,max=2000"`
	Priority    *int           `json:"priority" binding:"omitempty,min=1,max=4"`
	DueDate     optionalTime   `json:"dueDate"`
	ProjectID   optionalString `json:"projectId"`
	Tags        *[]string      `json:"tags"`
	Completed   *bool          `json:"completed"`
}

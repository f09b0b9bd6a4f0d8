// Package task owns the task collection and its persisted snapshot.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date form used for deadlines.
const DateLayout = "2006-01-02"

// Status is the lane a task lives in.
type Status string

const (
	StatusTodo  Status = "TODO"
	StatusDoing Status = "DOING"
	StatusDone  Status = "DONE"
)

// Statuses lists the lanes in display order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

// Valid reports whether s is one of the three lane statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts a status name in any case.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q, must be one of: TODO, DOING, DONE", v)
	}
	return s, nil
}

// ID identifies a task. Persisted IDs may be JSON numbers or strings.
type ID string

// MarshalJSON writes numeric IDs back as JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if isInteger(string(id)) || isDecimal(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// isDecimal matches non-integer number literals such as 1.5 or 2e3.
func isDecimal(s string) bool {
	if !strings.ContainsAny(s, ".eE") || !json.Valid([]byte(s)) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isInteger(s string) bool {
	if s == "" || len(s) > 18 {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Task is a single to-do item.
type Task struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Status      Status `json:"status"`
	Checked     bool   `json:"checked,omitempty"`
}

// DeadlineTime parses the deadline. ok is false when it is empty or malformed.
func (t Task) DeadlineTime() (time.Time, bool) {
	return parseDate(t.Deadline)
}

// IsDone reports whether the task sits in the DONE lane.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// Draft holds the user-supplied fields for a new task.
type Draft struct {
	Title       string
	Description string
	Deadline    string
	Status      Status
}

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError names the field that rejected an add or edit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets callers match any validation failure with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Deadline = strings.TrimSpace(d.Deadline)
	if d.Title == "" {
		return d, &ValidationError{Field: "title", Reason: "required"}
	}
	if d.Description == "" {
		return d, &ValidationError{Field: "description", Reason: "required"}
	}
	if d.Deadline == "" {
		return d, &ValidationError{Field: "deadline", Reason: "required"}
	}
	if _, ok := parseDate(d.Deadline); !ok {
		return d, &ValidationError{Field: "deadline", Reason: "must be a date (YYYY-MM-DD)"}
	}
	if d.Status == "" {
		d.Status = StatusTodo
	}
	s, err := ParseStatus(string(d.Status))
	if err != nil {
		return d, &ValidationError{Field: "status", Reason: err.Error()}
	}
	d.Status = s
	return d, nil
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

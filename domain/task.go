package domain

import "time"

// Task represents a compliance activity owned by a user and attached to one client.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	ClientID    string       `json:"client_id" validate:"required"`
	Title       string       `json:"title" validate:"notblank,max=300"`
	Description string       `json:"description,omitempty" validate:"max=5000"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Status      TaskStatus   `json:"status" validate:"oneof=pending in_progress completed overdue cancelled"`
	Priority    TaskPriority `json:"priority" validate:"oneof=low medium high urgent"`
	Notes       string       `json:"notes,omitempty" validate:"max=5000"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Client is the embedded related client, read-only.
	Client *ClientRef `json:"clients,omitempty"`
}

// ClientRef is the display projection of a task's client.
type ClientRef struct {
	Name string `json:"name"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskCompleted
}

// IsOverdueAt reports whether the task is past due at now regardless of its stored status.
func (t *Task) IsOverdueAt(now time.Time) bool {
	if t == nil || t.Status == TaskCompleted || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}

// ClientName returns the embedded client name, empty when not loaded.
func (t Task) ClientName() string {
	if t.Client == nil {
		return ""
	}
	return t.Client.Name
}

// Columns returns the writable columns of the row.
func (t *Task) Columns() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      t.UserID,
		"client_id":    t.ClientID,
		"title":        t.Title,
		"description":  nullString(t.Description),
		"due_date":     nullTime(t.DueDate),
		"status":       t.Status,
		"priority":     t.Priority,
		"notes":        nullString(t.Notes),
		"completed_at": nullTime(t.CompletedAt),
		"assigned_to":  nullString(t.AssignedTo),
	}
}

func (t Task) SearchFields() []string {
	return []string{t.Title, t.Description, t.ClientName()}
}

func (t Task) StatusValue() string {
	return string(t.Status)
}

// TaskPatch is a partial task update; nil fields are left untouched.
type TaskPatch struct {
	ClientID     *string       `json:"client_id" validate:"omitnil,required"`
	Title        *string       `json:"title" validate:"omitnil,notblank,max=300"`
	Description  *string       `json:"description" validate:"omitnil,max=5000"`
	DueDate      *time.Time    `json:"due_date"`
	ClearDueDate bool          `json:"-"`
	Status       *TaskStatus   `json:"status" validate:"omitnil,oneof=pending in_progress completed overdue cancelled"`
	Priority     *TaskPriority `json:"priority" validate:"omitnil,oneof=low medium high urgent"`
	Notes        *string       `json:"notes" validate:"omitnil,max=5000"`
	AssignedTo   *string       `json:"assigned_to"`

	// CompletedAt is derived from Status by the task use case.
	CompletedAt      *time.Time `json:"-"`
	ClearCompletedAt bool       `json:"-"`
}

// Columns returns only the columns set on the patch.
func (p TaskPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.ClientID != nil {
		cols["client_id"] = *p.ClientID
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = nullString(*p.Description)
	}
	if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	} else if p.ClearDueDate {
		cols["due_date"] = nil
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	if p.Notes != nil {
		cols["notes"] = nullString(*p.Notes)
	}
	if p.AssignedTo != nil {
		cols["assigned_to"] = nullString(*p.AssignedTo)
	}
	if p.CompletedAt != nil {
		cols["completed_at"] = *p.CompletedAt
	} else if p.ClearCompletedAt {
		cols["completed_at"] = nil
	}
	return cols
}

// Apply copies the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.ClientID != nil {
		t.ClientID = *p.ClientID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	} else if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.CompletedAt != nil {
		done := *p.CompletedAt
		t.CompletedAt = &done
	} else if p.ClearCompletedAt {
		t.CompletedAt = nil
	}
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

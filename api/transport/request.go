package transport

import (
	"strings"
	"time"

	"github.com/fastygo/compliance/domain"
)

const dateLayout = "2006-01-02"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type ClientRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Status        string `json:"status"`
}

func (r ClientRequest) Client() *domain.Client {
	return &domain.Client{
		Name:          strings.TrimSpace(r.Name),
		ContactPerson: strings.TrimSpace(r.ContactPerson),
		Email:         strings.TrimSpace(r.Email),
		Phone:         strings.TrimSpace(r.Phone),
		Address:       strings.TrimSpace(r.Address),
		Status:        domain.ClientStatus(r.Status),
	}
}

type TaskRequest struct {
	ClientID    string `json:"client_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Notes       string `json:"notes"`
	AssignedTo  string `json:"assigned_to"`
}

func (r TaskRequest) Task() (*domain.Task, error) {
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ClientID:    r.ClientID,
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		DueDate:     due,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		Notes:       r.Notes,
		AssignedTo:  r.AssignedTo,
	}, nil
}

// TaskPatchRequest is a partial task update. An empty due_date clears it.
type TaskPatchRequest struct {
	ClientID    *string `json:"client_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Notes       *string `json:"notes"`
	AssignedTo  *string `json:"assigned_to"`
}

func (r TaskPatchRequest) Patch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		ClientID:    r.ClientID,
		Title:       r.Title,
		Description: r.Description,
		Notes:       r.Notes,
		AssignedTo:  r.AssignedTo,
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		patch.Status = &s
	}
	if r.Priority != nil {
		p := domain.TaskPriority(*r.Priority)
		patch.Priority = &p
	}
	if r.DueDate != nil {
		due, err := ParseDate(*r.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.DueDate = due
		patch.ClearDueDate = due == nil
	}
	return patch, nil
}

type DocumentRequest struct {
	ClientID    string `json:"client_id"`
	TaskID      string `json:"task_id"`
	FileName    string `json:"file_name"`
	FileURL     string `json:"file_url"`
	FileSize    *int64 `json:"file_size"`
	FileType    string `json:"file_type"`
	Description string `json:"description"`
}

func (r DocumentRequest) Document() *domain.Document {
	return &domain.Document{
		ClientID:    OptionalID(r.ClientID),
		TaskID:      OptionalID(r.TaskID),
		FileName:    strings.TrimSpace(r.FileName),
		FileURL:     strings.TrimSpace(r.FileURL),
		FileSize:    r.FileSize,
		FileType:    r.FileType,
		Description: r.Description,
	}
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp. Blank yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, domain.ValidationError(map[string]string{"due_date": "due date must be a date (YYYY-MM-DD)"})
	}
	return &t, nil
}

// OptionalID maps a blank select value to no reference.
func OptionalID(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return nil
	}
	return &value
}

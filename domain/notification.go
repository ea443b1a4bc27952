package domain

import (
	"fmt"
	"strings"
	"time"
)

// Entity names a record type; the value is also the remote table name.
type Entity string

const (
	EntityClients   Entity = "clients"
	EntityTasks     Entity = "tasks"
	EntityDocuments Entity = "documents"
	EntityProfiles  Entity = "profiles"
)

// Singular returns the display noun, e.g. "client".
func (e Entity) Singular() string {
	return strings.TrimSuffix(string(e), "s")
}

// Operation is a write performed through the mutation pipeline.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

func (o Operation) pastTense() string {
	switch o {
	case OperationCreate:
		return "created"
	case OperationUpdate:
		return "updated"
	case OperationDelete:
		return "deleted"
	}
	return string(o)
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the user-facing outcome of a mutation.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Entity    Entity           `json:"entity,omitempty"`
	Operation Operation        `json:"operation,omitempty"`
	At        time.Time        `json:"at"`
}

// SuccessNotification builds e.g. "Task created successfully!".
func SuccessNotification(entity Entity, op Operation) Notification {
	noun := entity.Singular()
	return Notification{
		Kind:      NotificationSuccess,
		Title:     "Success",
		Message:   fmt.Sprintf("%s%s %s successfully!", strings.ToUpper(noun[:1]), noun[1:], op.pastTense()),
		Entity:    entity,
		Operation: op,
		At:        time.Now(),
	}
}

// FailureNotification builds e.g. "Failed to create task. Please try again.".
func FailureNotification(entity Entity, op Operation) Notification {
	return Notification{
		Kind:      NotificationError,
		Title:     "Error",
		Message:   fmt.Sprintf("Failed to %s %s. Please try again.", op, entity.Singular()),
		Entity:    entity,
		Operation: op,
		At:        time.Now(),
	}
}

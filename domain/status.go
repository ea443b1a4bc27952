package domain

// ClientStatus is the lifecycle state of a client relationship.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientPending  ClientStatus = "pending"
)

// ClientStatuses returns every client status in display order.
func ClientStatuses() []ClientStatus {
	return []ClientStatus{ClientActive, ClientInactive, ClientPending}
}

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientInactive, ClientPending:
		return true
	}
	return false
}

// ParseClientStatus converts a raw value, reporting whether it is a known status.
func ParseClientStatus(raw string) (ClientStatus, bool) {
	s := ClientStatus(raw)
	return s, s.Valid()
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskStatuses returns every task status in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskOverdue, TaskCancelled}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskOverdue, TaskCancelled:
		return true
	}
	return false
}

// ParseTaskStatus converts a raw value, reporting whether it is a known status.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	s := TaskStatus(raw)
	return s, s.Valid()
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskPriorities returns every priority from lowest to highest.
func TaskPriorities() []TaskPriority {
	return []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParseTaskPriority converts a raw value, reporting whether it is a known priority.
func ParseTaskPriority(raw string) (TaskPriority, bool) {
	p := TaskPriority(raw)
	return p, p.Valid()
}

// StatusAll is the filter sentinel that matches every status.
const StatusAll = "all"

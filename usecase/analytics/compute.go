package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/compliance/domain"
)

// Variant selects which view a summary is rendered for.
type Variant string

const (
	VariantDashboard Variant = "dashboard"
	VariantAnalytics Variant = "analytics"
)

// ViewConfig parameterizes one aggregation for every view that shows it.
type ViewConfig struct {
	Variant          Variant
	RecentLimit      int
	IncludeDocuments bool
}

// ConfigFor returns the view configuration of a variant.
func ConfigFor(v Variant) (ViewConfig, bool) {
	switch v {
	case VariantDashboard:
		return ViewConfig{Variant: v, RecentLimit: 5, IncludeDocuments: true}, true
	case VariantAnalytics:
		return ViewConfig{Variant: v}, true
	}
	return ViewConfig{}, false
}

// Input is the fetched rows of one owner.
type Input struct {
	Tasks     []domain.Task
	Clients   []domain.Client
	Documents []domain.Document
}

// Bucket is one histogram bar.
type Bucket struct {
	Value string       `json:"value"`
	Count int          `json:"count"`
	Style domain.Style `json:"style"`
}

// Summary is the derived view. It is recomputed on every request and never stored.
type Summary struct {
	Variant            Variant       `json:"variant"`
	TotalTasks         int           `json:"total_tasks"`
	CompletedTasks     int           `json:"completed_tasks"`
	PendingTasks       int           `json:"pending_tasks"`
	OverdueTasks       int           `json:"overdue_tasks"`
	StoredOverdueTasks int           `json:"stored_overdue_tasks"`
	CompletionRate     int           `json:"completion_rate"`
	StatusHistogram    []Bucket      `json:"status_histogram"`
	PriorityHistogram  []Bucket      `json:"priority_histogram"`
	TotalClients       int           `json:"total_clients"`
	ActiveClients      int           `json:"active_clients"`
	TotalDocuments     int           `json:"total_documents,omitempty"`
	RecentTasks        []domain.Task `json:"recent_tasks,omitempty"`
	// Skipped counts task rows whose status or priority is not a known value.
	Skipped     int       `json:"skipped,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Compute aggregates in. It is pure: now is the only notion of time.
func Compute(in Input, now time.Time, cfg ViewConfig) Summary {
	statusCounts := make(map[domain.TaskStatus]int, len(domain.TaskStatuses()))
	priorityCounts := make(map[domain.TaskPriority]int, len(domain.TaskPriorities()))

	s := Summary{Variant: cfg.Variant, GeneratedAt: now}
	valid := make([]domain.Task, 0, len(in.Tasks))

	for _, task := range in.Tasks {
		if !task.Status.Valid() || !task.Priority.Valid() {
			s.Skipped++
			continue
		}
		valid = append(valid, task)
		statusCounts[task.Status]++
		priorityCounts[task.Priority]++

		if task.IsOverdueAt(now) {
			s.OverdueTasks++
		}
	}

	s.TotalTasks = len(valid)
	s.CompletedTasks = statusCounts[domain.TaskCompleted]
	s.PendingTasks = statusCounts[domain.TaskPending]
	s.StoredOverdueTasks = statusCounts[domain.TaskOverdue]
	s.CompletionRate = completionRate(s.CompletedTasks, s.TotalTasks)

	for _, st := range domain.TaskStatuses() {
		s.StatusHistogram = append(s.StatusHistogram, Bucket{Value: string(st), Count: statusCounts[st], Style: st.Style()})
	}
	for _, p := range domain.TaskPriorities() {
		s.PriorityHistogram = append(s.PriorityHistogram, Bucket{Value: string(p), Count: priorityCounts[p], Style: p.Style()})
	}

	s.TotalClients = len(in.Clients)
	for i := range in.Clients {
		if in.Clients[i].IsActive() {
			s.ActiveClients++
		}
	}

	if cfg.IncludeDocuments {
		s.TotalDocuments = len(in.Documents)
	}
	if cfg.RecentLimit > 0 {
		s.RecentTasks = byDueDate(valid, cfg.RecentLimit)
	}
	return s
}

// completionRate is round(completed/total*100), half away from zero, 0 for no tasks.
func completionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(completed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(rate.IntPart())
}

// byDueDate returns the first limit tasks ordered by due date ascending,
// undated last. Every status is included, as on the dashboard list.
func byDueDate(tasks []domain.Task, limit int) []domain.Task {
	ordered := make([]domain.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].DueDate, ordered[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

package monitor

import "time"

// Component is the last observed state of one dependency.
type Component struct {
	Online   bool                   `json:"online"`
	Required bool                   `json:"required"`
	Latency  time.Duration          `json:"latency_ns"`
	Error    string                 `json:"error,omitempty"`
	Detail   map[string]interface{} `json:"detail,omitempty"`
}

type Status struct {
	Components map[string]Component `json:"services"`
	LastCheck  time.Time            `json:"last_check"`
}

// Healthy reports whether every required component answered the last check.
func (s Status) Healthy() bool {
	if s.LastCheck.IsZero() {
		return false
	}
	for _, c := range s.Components {
		if c.Required && !c.Online {
			return false
		}
	}
	return true
}

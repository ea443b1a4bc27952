package domain

import "strings"

// Style carries the display attributes of an enumerated value.
type Style struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Badge string `json:"badge"`
}

const (
	colorAmber  = "#f59e0b"
	colorBlue   = "#3b82f6"
	colorGreen  = "#10b981"
	colorRed    = "#ef4444"
	colorGray   = "#6b7280"
	colorOrange = "#f97316"
)

// Style maps the status to its badge and chart color. Every constant has a case.
func (s ClientStatus) Style() Style {
	switch s {
	case ClientActive:
		return Style{Label: label(string(s)), Color: colorGreen, Badge: "default"}
	case ClientInactive:
		return Style{Label: label(string(s)), Color: colorGray, Badge: "secondary"}
	case ClientPending:
		return Style{Label: label(string(s)), Color: colorAmber, Badge: "outline"}
	}
	return Style{}
}

func (s TaskStatus) Style() Style {
	switch s {
	case TaskPending:
		return Style{Label: label(string(s)), Color: colorAmber, Badge: "secondary"}
	case TaskInProgress:
		return Style{Label: label(string(s)), Color: colorBlue, Badge: "secondary"}
	case TaskCompleted:
		return Style{Label: label(string(s)), Color: colorGreen, Badge: "default"}
	case TaskOverdue:
		return Style{Label: label(string(s)), Color: colorRed, Badge: "destructive"}
	case TaskCancelled:
		return Style{Label: label(string(s)), Color: colorGray, Badge: "outline"}
	}
	return Style{}
}

func (p TaskPriority) Style() Style {
	switch p {
	case PriorityLow:
		return Style{Label: label(string(p)), Color: colorGreen, Badge: "outline"}
	case PriorityMedium:
		return Style{Label: label(string(p)), Color: colorAmber, Badge: "secondary"}
	case PriorityHigh:
		return Style{Label: label(string(p)), Color: colorOrange, Badge: "default"}
	case PriorityUrgent:
		return Style{Label: label(string(p)), Color: colorRed, Badge: "destructive"}
	}
	return Style{}
}

func label(value string) string {
	return strings.ToUpper(strings.ReplaceAll(value, "_", " "))
}

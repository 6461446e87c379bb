package domain

import "time"

// Notification is a reminder or a proactive suggestion produced by a poll.
// It is displayed immediately by the widget and never persisted.
type Notification struct {
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Emotion       string   `json:"emotion,omitempty"`
	Urgency       Urgency  `json:"urgency,omitempty"`
	Type          string   `json:"type,omitempty"`
	CandidateID   string   `json:"candidate_id,omitempty"`
	CandidateName string   `json:"candidate_name,omitempty"`
	Actions       []Action `json:"actions,omitempty"`
}

// CandidateStatus values used by the portal.
const (
	CandidateStatusPending  = "Pending"
	CandidateStatusAssigned = "Assigned"
)

// Candidate is the slice of the portal's candidate record the assistant reads.
type Candidate struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	ManagerEmail string     `json:"manager_email,omitempty"`
	AssignedBy   string     `json:"assigned_by,omitempty"`
	InterviewAt  *time.Time `json:"interview_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CandidateStats is the pipeline summary used for data replies.
type CandidateStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Assigned    int `json:"assigned"`
	NewThisWeek int `json:"new_this_week"`
}

// ActivityContext is what the widget reports about the user's activity.
type ActivityContext struct {
	CurrentPage  string `json:"currentPage,omitempty"`
	TimeOnPageMS int64  `json:"timeOnPage,omitempty"`
	Interactions int    `json:"interactions,omitempty"`
	UserRole     string `json:"userRole,omitempty"`
	LastMessage  string `json:"lastMessage,omitempty"`
}

func (a ActivityContext) TimeOnPage() time.Duration {
	return time.Duration(a.TimeOnPageMS) * time.Millisecond
}

package domain

import "time"

type TaskStatus string

const (
	StatusQueued  TaskStatus = "queued"
	StatusRunning TaskStatus = "running"
	StatusDone    TaskStatus = "done"
	StatusFailed  TaskStatus = "failed"
)

// RequestedBy values record who put the task in the store. Only "system"
// tasks participate in scheduler dedup.
const (
	RequestedByDiscord = "discord"
	RequestedByNotion  = "notion"
	RequestedByManual  = "manual"
	RequestedBySystem  = "system"
)

// Task mirrors one record in the shared task database. The store assigns ID
// and CreatedAt; after creation only the worker mutates a task.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	Type        string     `json:"type"`
	Project     string     `json:"project"`
	Payload     string     `json:"payload,omitempty"`
	RequestedBy string     `json:"requested_by"`
	RunCount    int        `json:"run_count"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Result      string     `json:"result,omitempty"`
	ParentTask  string     `json:"parent_task,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTask is the create-side shape.
type NewTask struct {
	Name        string
	Type        string
	Project     string
	Payload     string
	RequestedBy string
	ParentTask  string
	Icon        string
}

// Patch carries only the fields an update should touch; nil means untouched.
// Claiming clears LastError by writing an empty string through StrPtr.
type Patch struct {
	Name       *string
	Status     *TaskStatus
	RunCount   *int
	StartedAt  *time.Time
	FinishedAt *time.Time
	LastError  *string
	Result     *string
}

func StrPtr(s string) *string            { return &s }
func IntPtr(n int) *int                  { return &n }
func StatusPtr(s TaskStatus) *TaskStatus { return &s }
func TimePtr(t time.Time) *time.Time     { return &t }

// Filter narrows a store List call. Zero values are ignored; the created-time
// bounds exist for the scheduler's period-window dedup query.
type Filter struct {
	Status           TaskStatus
	Type             string
	Project          string
	RequestedBy      string
	CreatedOnOrAfter time.Time
	CreatedBefore    time.Time
	Limit            int
}

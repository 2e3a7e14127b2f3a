// Package dispatch maps task types to the external agent commands that do
// the actual work. The mapping is a closed switch: a type nobody registered
// here is a domain.DispatchError, surfaced as a failed task.
package dispatch

import (
	"encoding/json"
	"strings"

	"agentq/internal/domain"
)

// Invocation is a ready-to-exec command line. Argv[0] is the program; the
// command runs with the agents root as working directory.
type Invocation struct {
	Argv []string
	Icon string
}

// FollowUp lets a type enqueue exactly one child task after a successful run.
// The worker stays the sole store writer; rules receive the finished task and
// the artifact reference the command announced, and may return nil. A run
// that produced no artifact never reaches a rule.
type FollowUp func(t domain.Task, artifact string) *domain.NewTask

type Table struct{}

func (Table) Resolve(t domain.Task) (Invocation, error) {
	switch t.Type {
	case "posts_create":
		return Invocation{
			Argv: []string{"python3", "agents/social-posts/scripts/generate_post.py", t.Project, "--parent-task-id", t.ID},
			Icon: "📝",
		}, nil

	case "email_check":
		return Invocation{
			Argv: []string{"python3", "agents/email-triage/scripts/agent.py", t.Project, "20", "--status", "unread", "--parent-task-id", t.ID},
			Icon: "📬",
		}, nil

	case "email_tasks_create":
		argv := []string{"python3", "agents/email-triage/scripts/create_tasks.py", t.Project}
		if t.Payload != "" {
			argv = append(argv, "--source", t.Payload)
		}
		if t.ID != "" {
			argv = append(argv, "--parent-task-id", t.ID)
		}
		return Invocation{Argv: argv, Icon: "📋"}, nil

	case "content_refresh":
		return Invocation{
			Argv: []string{"python3", "agents/content-library/scripts/refresh_library.py"},
			Icon: "🔄",
		}, nil

	case "lesson_send":
		argv := []string{"python3", "agents/language-study/scripts/lesson_send.py", t.Project}
		argv = append(argv, lessonFlags(t.Payload)...)
		if t.ID != "" {
			argv = append(argv, "--parent-task-id", t.ID)
		}
		return Invocation{Argv: argv, Icon: "🎓"}, nil

	case "lesson_correct":
		return Invocation{
			Argv: []string{"python3", "agents/language-study/scripts/lesson_correct.py", t.Project},
			Icon: "✏️",
		}, nil

	default:
		return Invocation{}, &domain.DispatchError{Type: t.Type}
	}
}

// FollowUp returns the fan-out rule for a type, or nil when the type has
// none. Only email_check fans out: a check that announced a classified-emails
// artifact enqueues the task-creation step for it.
func (Table) FollowUp(taskType string) FollowUp {
	if taskType != "email_check" {
		return nil
	}
	return func(t domain.Task, artifact string) *domain.NewTask {
		artifact = strings.TrimSpace(artifact)
		if artifact == "" {
			return nil
		}
		return &domain.NewTask{
			Name:        "email_tasks_create " + t.Project,
			Type:        "email_tasks_create",
			Project:     t.Project,
			Payload:     artifact,
			RequestedBy: domain.RequestedBySystem,
			ParentTask:  t.ID,
			Icon:        Icon("email_tasks_create"),
		}
	}
}

// Icon returns the display emoji for a type, empty for unknown types.
// Decorative only.
func Icon(taskType string) string {
	inv, err := Table{}.Resolve(domain.Task{Type: taskType})
	if err != nil {
		return ""
	}
	return inv.Icon
}

type lessonPayload struct {
	StudentID  string `json:"student_id"`
	Topic      string `json:"topic"`
	LessonType string `json:"lesson_type"`
}

// lessonFlags tolerates junk payloads: anything that is not the expected
// JSON object simply contributes no flags.
func lessonFlags(payload string) []string {
	if payload == "" {
		return nil
	}
	var p lessonPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil
	}
	var argv []string
	if s := strings.TrimSpace(p.StudentID); s != "" {
		argv = append(argv, "--student-id", s)
	}
	if s := strings.TrimSpace(p.Topic); s != "" {
		argv = append(argv, "--topic", s)
	}
	if s := strings.TrimSpace(p.LessonType); s != "" {
		argv = append(argv, "--lesson-type", s)
	}
	return argv
}

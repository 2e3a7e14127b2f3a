// Package chat parses the producer message surface: "<domain> <action>
// <project> [extra...]". Parsing happens before any store access, so a bad
// message is rejected without side effects.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"agentq/internal/domain"
)

var (
	ErrUnknownDomain  = errors.New("unknown command domain")
	ErrUnknownAction  = errors.New("unknown action for this domain")
	ErrMissingProject = errors.New("missing project")
)

// commands maps "<domain> <action>" onto a task type.
var commands = map[string]map[string]string{
	"posts":   {"create": "posts_create"},
	"email":   {"check": "email_check", "tasks": "email_tasks_create"},
	"content": {"refresh": "content_refresh"},
	"lesson":  {"send": "lesson_send", "correct": "lesson_correct"},
}

// Parse turns a chat message into a creatable task. requestedBy tags the
// provenance (discord for the bot, manual for the panel/CLI).
func Parse(message, requestedBy string) (domain.NewTask, error) {
	fields := strings.Fields(strings.TrimSpace(message))
	if len(fields) < 2 {
		return domain.NewTask{}, ErrUnknownDomain
	}

	actions, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return domain.NewTask{}, fmt.Errorf("%w: %q", ErrUnknownDomain, fields[0])
	}
	taskType, ok := actions[strings.ToLower(fields[1])]
	if !ok {
		return domain.NewTask{}, fmt.Errorf("%w: %q", ErrUnknownAction, fields[1])
	}
	if len(fields) < 3 {
		return domain.NewTask{}, ErrMissingProject
	}
	project := fields[2]

	return domain.NewTask{
		Name:        taskType + " " + project,
		Type:        taskType,
		Project:     project,
		Payload:     payloadFor(taskType, fields[3:]),
		RequestedBy: requestedBy,
	}, nil
}

// payloadFor shapes trailing args into the payload the type expects:
// lesson_send takes a topic, everything else gets the args as free text.
func payloadFor(taskType string, extra []string) string {
	if len(extra) == 0 {
		return ""
	}
	if taskType == "lesson_send" {
		b, _ := json.Marshal(map[string]string{"topic": strings.Join(extra, " ")})
		return string(b)
	}
	return strings.Join(extra, " ")
}

package worker

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"agentq/internal/domain"
)

// runCommand executes one agent invocation, blocking until exit or timeout.
// stdout and stderr come back separately; a non-zero exit or timeout is a
// *domain.CommandError.
func runCommand(ctx context.Context, argv []string, dir string, timeout time.Duration) (string, string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())

	if err == nil {
		return out, errOut, nil
	}
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return out, errOut, &domain.CommandError{TimedOut: true, Output: errOut}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, errOut, &domain.CommandError{ExitCode: exitErr.ExitCode(), Output: errOut}
	}
	// the command never started (bad binary, permission)
	return out, errOut, &domain.CommandError{ExitCode: -1, Output: err.Error()}
}

const resultMarker = "RESULT: "

// extractResult pulls the agent's explicit result reference from stdout, or
// falls back to the whole output. The second return reports whether the
// marker was present: only a marked result names a real artifact, the
// fallbacks are just a record of what the command printed.
func extractResult(stdout string) (string, bool) {
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, resultMarker) {
			return strings.TrimSpace(line[len(resultMarker):]), true
		}
	}
	if trimmed := strings.TrimSpace(stdout); trimmed != "" {
		return trimmed, false
	}
	return "ok", false
}

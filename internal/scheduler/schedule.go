package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is one recurring task definition from the schedule file. The file is
// external configuration; this core only reads it.
type Entry struct {
	Type      string `json:"type"`
	Frequency string `json:"frequency"`
}

type scheduleFile struct {
	Items []Entry `json:"items"`
}

func LoadSchedule(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schedule file: %w", err)
	}
	var f scheduleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("schedule file %s: %w", path, err)
	}
	if f.Items == nil {
		return nil, fmt.Errorf("schedule file %s: missing items list", path)
	}
	return f.Items, nil
}

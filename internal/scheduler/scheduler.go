// Package scheduler materializes recurring task definitions into concrete
// queued tasks, at most one per (type, project) per period window. Dedup
// only ever looks at system-requested tasks: a manual or chat-triggered run
// neither suppresses nor is suppressed by the schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"agentq/internal/dispatch"
	"agentq/internal/domain"
	"agentq/internal/ports"
)

type Scheduler struct {
	Store    ports.Store
	Entries  []Entry
	Projects []string
	Location *time.Location

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Created int
	Skipped int
}

// Run is one scheduler invocation: idempotent within a period window, so an
// external timer can fire it as often as it likes. A store failure aborts
// immediately.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}

	var res Result
	for _, project := range s.Projects {
		for _, entry := range s.Entries {
			if entry.Type == "" || entry.Frequency == "" {
				continue
			}

			var win Window
			switch entry.Frequency {
			case "daily":
				win = dailyWindow(now, loc)
			case "twice_per_week":
				win = twiceWeekWindow(now, loc)
			default:
				log.Ctx(ctx).Warn().
					Str("type", entry.Type).
					Str("frequency", entry.Frequency).
					Msg("skipping entry with unknown frequency")
				continue
			}

			exists, err := s.taskExists(ctx, entry.Type, project, win)
			if err != nil {
				return res, err
			}
			if exists {
				log.Ctx(ctx).Info().
					Str("type", entry.Type).
					Str("project", project).
					Str("frequency", entry.Frequency).
					Msg("skip, task already exists for this period")
				res.Skipped++
				continue
			}

			created, err := s.Store.Create(ctx, domain.NewTask{
				Name:        entry.Type + " " + project,
				Type:        entry.Type,
				Project:     project,
				RequestedBy: domain.RequestedBySystem,
				Icon:        dispatch.Icon(entry.Type),
			})
			if err != nil {
				return res, err
			}
			log.Ctx(ctx).Info().
				Str("task", created.ID).
				Str("type", entry.Type).
				Str("project", project).
				Str("frequency", entry.Frequency).
				Msg("created recurring task")
			res.Created++
		}
	}
	return res, nil
}

// taskExists asks the store whether a system-requested task of this type and
// project was already created inside the window.
func (s *Scheduler) taskExists(ctx context.Context, taskType, project string, win Window) (bool, error) {
	tasks, err := s.Store.List(ctx, domain.Filter{
		Type:             taskType,
		Project:          project,
		RequestedBy:      domain.RequestedBySystem,
		CreatedOnOrAfter: win.Start,
		CreatedBefore:    win.End,
		Limit:            1,
	})
	if err != nil {
		return false, err
	}
	return len(tasks) > 0, nil
}

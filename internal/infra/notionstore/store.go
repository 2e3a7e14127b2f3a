package notionstore

import (
	"context"
	"time"

	"agentq/internal/domain"
)

type queryRequest struct {
	PageSize int              `json:"page_size,omitempty"`
	Filter   map[string]any   `json:"filter,omitempty"`
	Sorts    []map[string]any `json:"sorts,omitempty"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

func (c *Client) List(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	req := queryRequest{
		Sorts: []map[string]any{
			{"timestamp": "created_time", "direction": "ascending"},
		},
	}
	if f.Limit > 0 {
		req.PageSize = min(f.Limit, 100)
	}
	if conds := filterConditions(f); len(conds) == 1 {
		req.Filter = conds[0]
	} else if len(conds) > 1 {
		req.Filter = map[string]any{"and": conds}
	}

	var resp queryResponse
	if err := c.do(ctx, "POST", "/databases/"+c.cfg.DatabaseID+"/query", req, &resp); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}

	tasks := make([]domain.Task, 0, len(resp.Results))
	for _, p := range resp.Results {
		tasks = append(tasks, p.task())
	}
	return tasks, nil
}

func filterConditions(f domain.Filter) []map[string]any {
	var conds []map[string]any
	sel := func(name, value string) {
		conds = append(conds, map[string]any{
			"property": name,
			"select":   map[string]any{"equals": value},
		})
	}
	if f.Status != "" {
		sel("Status", string(f.Status))
	}
	if f.Type != "" {
		sel("Type", f.Type)
	}
	if f.Project != "" {
		sel("Project", f.Project)
	}
	if f.RequestedBy != "" {
		sel("RequestedBy", f.RequestedBy)
	}
	if !f.CreatedOnOrAfter.IsZero() {
		conds = append(conds, map[string]any{
			"timestamp":    "created_time",
			"created_time": map[string]any{"on_or_after": iso(f.CreatedOnOrAfter)},
		})
	}
	if !f.CreatedBefore.IsZero() {
		conds = append(conds, map[string]any{
			"timestamp":    "created_time",
			"created_time": map[string]any{"before": iso(f.CreatedBefore)},
		})
	}
	return conds
}

type createRequest struct {
	Parent     map[string]string `json:"parent"`
	Icon       map[string]any    `json:"icon,omitempty"`
	Properties map[string]prop   `json:"properties"`
}

func (c *Client) Create(ctx context.Context, t domain.NewTask) (domain.Task, error) {
	props := map[string]prop{
		"Name":        titleProp(t.Name),
		"Status":      selectProp(string(domain.StatusQueued)),
		"Type":        selectProp(t.Type),
		"Project":     selectProp(t.Project),
		"RequestedBy": selectProp(t.RequestedBy),
	}
	if t.Payload != "" {
		props["Payload"] = textProp(t.Payload)
	}
	if t.ParentTask != "" {
		props["ParentTask"] = relationProp(t.ParentTask)
	}

	req := createRequest{
		Parent:     map[string]string{"database_id": c.cfg.DatabaseID},
		Properties: props,
	}
	if t.Icon != "" {
		req.Icon = map[string]any{"type": "emoji", "emoji": t.Icon}
	}

	var created page
	if err := c.do(ctx, "POST", "/pages", req, &created); err != nil {
		return domain.Task{}, &domain.StoreError{Op: "create", Err: err}
	}
	return created.task(), nil
}

func (c *Client) Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error) {
	props := map[string]prop{}
	if p.Name != nil {
		props["Name"] = titleProp(*p.Name)
	}
	if p.Status != nil {
		props["Status"] = selectProp(string(*p.Status))
	}
	if p.RunCount != nil {
		props["RunCount"] = numberProp(*p.RunCount)
	}
	if p.StartedAt != nil {
		props["StartedAt"] = dateProp(*p.StartedAt)
	}
	if p.FinishedAt != nil {
		props["FinishedAt"] = dateProp(*p.FinishedAt)
	}
	if p.LastError != nil {
		props["LastError"] = textProp(*p.LastError)
	}
	if p.Result != nil {
		props["Result"] = textProp(*p.Result)
	}

	var updated page
	body := map[string]any{"properties": props}
	if err := c.do(ctx, "PATCH", "/pages/"+id, body, &updated); err != nil {
		return domain.Task{}, &domain.StoreError{Op: "update", Err: err}
	}
	return updated.task(), nil
}

func iso(t time.Time) string { return t.UTC().Format(time.RFC3339) }

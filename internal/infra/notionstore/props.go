package notionstore

import (
	"time"
	"unicode/utf8"

	"agentq/internal/domain"
)

// maxText is Notion's rich_text fragment limit; Result/LastError/Payload
// writes are clipped to it.
const maxText = 1500

type richText struct {
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type selectOpt struct {
	Name string `json:"name"`
}

type dateVal struct {
	Start string `json:"start"`
}

type relationRef struct {
	ID string `json:"id"`
}

// prop is one Notion property value, reading and writing alike; exactly one
// field is ever set.
type prop struct {
	Title    []richText    `json:"title,omitempty"`
	RichText []richText    `json:"rich_text,omitempty"`
	Select   *selectOpt    `json:"select,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Date     *dateVal      `json:"date,omitempty"`
	Relation []relationRef `json:"relation,omitempty"`
}

type page struct {
	ID          string          `json:"id"`
	CreatedTime time.Time       `json:"created_time"`
	Properties  map[string]prop `json:"properties"`
}

func titleProp(s string) prop {
	return prop{Title: []richText{{Text: &textContent{Content: clip(s)}}}}
}

func textProp(s string) prop {
	return prop{RichText: []richText{{Text: &textContent{Content: clip(s)}}}}
}

func selectProp(s string) prop { return prop{Select: &selectOpt{Name: s}} }

func numberProp(n int) prop {
	f := float64(n)
	return prop{Number: &f}
}

func dateProp(t time.Time) prop {
	return prop{Date: &dateVal{Start: t.UTC().Format(time.RFC3339)}}
}

func relationProp(id string) prop { return prop{Relation: []relationRef{{ID: id}}} }

// clip truncates to the store's fragment limit without splitting a rune;
// agent output is routinely non-ASCII.
func clip(s string) string {
	if len(s) <= maxText {
		return s
	}
	cut := maxText
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (p page) task() domain.Task {
	props := p.Properties
	t := domain.Task{
		ID:          p.ID,
		Name:        joinText(props["Name"].Title),
		Status:      domain.TaskStatus(selectName(props["Status"])),
		Type:        selectName(props["Type"]),
		Project:     selectName(props["Project"]),
		Payload:     joinText(props["Payload"].RichText),
		RequestedBy: selectName(props["RequestedBy"]),
		LastError:   joinText(props["LastError"].RichText),
		Result:      joinText(props["Result"].RichText),
		CreatedAt:   p.CreatedTime,
	}
	if n := props["RunCount"].Number; n != nil {
		t.RunCount = int(*n)
	}
	t.StartedAt = parseDate(props["StartedAt"])
	t.FinishedAt = parseDate(props["FinishedAt"])
	if rel := props["ParentTask"].Relation; len(rel) > 0 {
		t.ParentTask = rel[0].ID
	}
	return t
}

func joinText(parts []richText) string {
	var out string
	for _, p := range parts {
		if p.PlainText != "" {
			out += p.PlainText
		} else if p.Text != nil {
			out += p.Text.Content
		}
	}
	return out
}

func selectName(p prop) string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

func parseDate(p prop) *time.Time {
	if p.Date == nil || p.Date.Start == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, p.Date.Start)
	if err != nil {
		return nil
	}
	return &t
}

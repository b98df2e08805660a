package model

import (
	"time"

	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/rule"
)

// TaskMeta is a read projection of one task's scheduling state. It is
// rebuilt fresh from the store on every completion pipeline run and never
// cached across runs.
type TaskMeta struct {
	RepeatText     string
	Due            *time.Time
	Start          *time.Time
	Defer          *time.Time
	ProcessedAt    *time.Time
	CompletedAt    *time.Time
	SeriesID       string
	ParentSeriesID string
	AdvanceFrom    rule.AdvanceMode
}

// Recurring reports whether the task carries a recurrence expression.
func (m TaskMeta) Recurring() bool {
	return m.RepeatText != ""
}

// Scheduled reports whether any timing attribute is present.
func (m TaskMeta) Scheduled() bool {
	return m.Due != nil || m.Start != nil || m.Defer != nil
}

// MetaFromTask reads the recognized attributes off a task. Malformed date
// values are treated as absent rather than failing the read.
func MetaFromTask(t Task, loc *time.Location) TaskMeta {
	meta := TaskMeta{
		RepeatText:     t.Attr(AttrRepeat),
		SeriesID:       t.Attr(AttrSeries),
		ParentSeriesID: t.Attr(AttrParentSeries),
	}
	meta.Due = attrDate(t, AttrDue, loc)
	meta.Start = attrDate(t, AttrStart, loc)
	meta.Defer = attrDate(t, AttrDefer, loc)
	meta.ProcessedAt = attrTimestamp(t, AttrProcessed)
	meta.CompletedAt = attrTimestamp(t, AttrCompleted)
	switch mode := rule.AdvanceMode(t.Attr(AttrAdvanceFrom)); mode {
	case rule.AdvanceFromDue, rule.AdvanceFromCompletion:
		meta.AdvanceFrom = mode
	}
	return meta
}

func attrDate(t Task, kind AttrKind, loc *time.Location) *time.Time {
	raw := t.Attr(kind)
	if raw == "" {
		return nil
	}
	d, ok := dates.ParseDate(raw, loc)
	if !ok {
		return nil
	}
	return &d
}

func attrTimestamp(t Task, kind AttrKind) *time.Time {
	raw := t.Attr(kind)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &ts
}

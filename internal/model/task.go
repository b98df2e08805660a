package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingID   = errors.New("model: task id is required")
	ErrMissingText = errors.New("model: task text is required")
)

// DoneMarker is the visible completion marker carried in task text.
const DoneMarker = "[x] "

// AttrKind names one recognized scheduling attribute on a task. Attribute
// values are stored by the document store as plain strings that round-trip
// through the date formatting in internal/dates.
type AttrKind string

const (
	AttrDue          AttrKind = "due"
	AttrStart        AttrKind = "start"
	AttrDefer        AttrKind = "defer"
	AttrRepeat       AttrKind = "repeat"
	AttrCompleted    AttrKind = "completed"
	AttrProcessed    AttrKind = "processed"
	AttrSeries       AttrKind = "series"
	AttrParentSeries AttrKind = "parent-series"
	AttrAdvanceFrom  AttrKind = "advance-from"
)

// AttrKinds lists every recognized attribute, in storage order. Undo
// snapshots iterate this list so restores are exhaustive.
var AttrKinds = []AttrKind{
	AttrDue, AttrStart, AttrDefer, AttrRepeat,
	AttrCompleted, AttrProcessed, AttrSeries, AttrParentSeries, AttrAdvanceFrom,
}

func (k AttrKind) IsValid() bool {
	switch k {
	case AttrDue, AttrStart, AttrDefer, AttrRepeat,
		AttrCompleted, AttrProcessed, AttrSeries, AttrParentSeries, AttrAdvanceFrom:
		return true
	default:
		return false
	}
}

// Task is the read projection of one stored task: its text, freeform
// properties, recognized scheduling attributes, and location in the
// document graph.
type Task struct {
	ID        string
	ParentID  string
	Order     int
	Text      string
	Props     map[string]string
	Attrs     map[AttrKind]string
	CreatedAt time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrMissingText
	}
	return nil
}

// Done reports whether the task text carries the visible completion marker.
func (t Task) Done() bool {
	return strings.HasPrefix(t.Text, DoneMarker)
}

// MarkedText returns the task text with the completion marker applied.
func (t Task) MarkedText() string {
	if t.Done() {
		return t.Text
	}
	return DoneMarker + t.Text
}

// UnmarkedText returns the task text with the completion marker removed.
func (t Task) UnmarkedText() string {
	return strings.TrimPrefix(t.Text, DoneMarker)
}

// Attr returns one attribute value, "" when absent.
func (t Task) Attr(kind AttrKind) string {
	return t.Attrs[kind]
}

// CloneAttrs copies the attribute map so snapshots do not alias live state.
func (t Task) CloneAttrs() map[AttrKind]string {
	out := make(map[AttrKind]string, len(t.Attrs))
	for k, v := range t.Attrs {
		out[k] = v
	}
	return out
}

// CloneProps copies the property map.
func (t Task) CloneProps() map[string]string {
	out := make(map[string]string, len(t.Props))
	for k, v := range t.Props {
		out[k] = v
	}
	return out
}

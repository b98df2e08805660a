package model

import (
	"testing"
	"time"

	"github.com/cadence-tools/cadence/internal/rule"
)

func TestDoneMarkerRoundTrip(t *testing.T) {
	task := Task{ID: "t1", Text: "Water the plants"}
	if task.Done() {
		t.Fatal("fresh task should not be done")
	}

	marked := Task{ID: "t1", Text: task.MarkedText()}
	if !marked.Done() {
		t.Fatalf("expected done after marking, text %q", marked.Text)
	}
	if marked.MarkedText() != marked.Text {
		t.Fatal("marking twice must not stack markers")
	}
	if marked.UnmarkedText() != "Water the plants" {
		t.Fatalf("unmark lost text: %q", marked.UnmarkedText())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		task Task
		want error
	}{
		{"ok", Task{ID: "t1", Text: "x"}, nil},
		{"missing id", Task{Text: "x"}, ErrMissingID},
		{"blank id", Task{ID: "   ", Text: "x"}, ErrMissingID},
		{"missing text", Task{ID: "t1"}, ErrMissingText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.task.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAttrKindValidation(t *testing.T) {
	for _, k := range AttrKinds {
		if !k.IsValid() {
			t.Fatalf("listed kind %q should be valid", k)
		}
	}
	if AttrKind("priority").IsValid() {
		t.Fatal("unknown kind should be invalid")
	}
}

func TestCloneMapsDoNotAlias(t *testing.T) {
	task := Task{
		ID:    "t1",
		Text:  "x",
		Props: map[string]string{"color": "blue"},
		Attrs: map[AttrKind]string{AttrDue: "2026-03-11"},
	}
	attrs := task.CloneAttrs()
	props := task.CloneProps()
	attrs[AttrDue] = "2026-04-01"
	props["color"] = "red"
	if task.Attrs[AttrDue] != "2026-03-11" || task.Props["color"] != "blue" {
		t.Fatal("clone aliases the original maps")
	}
}

func TestMetaFromTask(t *testing.T) {
	task := Task{
		ID:   "t1",
		Text: "pay rent",
		Attrs: map[AttrKind]string{
			AttrDue:         "2026-03-11",
			AttrRepeat:      "every month",
			AttrSeries:      "series-1",
			AttrAdvanceFrom: "completion",
			AttrProcessed:   "2026-03-11T09:30:00Z",
		},
	}
	meta := MetaFromTask(task, time.UTC)
	if !meta.Recurring() || !meta.Scheduled() {
		t.Fatalf("unexpected meta flags: %+v", meta)
	}
	if meta.Due == nil || meta.Due.Year() != 2026 || meta.Due.Month() != time.March || meta.Due.Day() != 11 {
		t.Fatalf("unexpected due: %v", meta.Due)
	}
	if meta.Start != nil || meta.Defer != nil {
		t.Fatalf("absent attrs should stay nil: %+v", meta)
	}
	if meta.AdvanceFrom != rule.AdvanceFromCompletion {
		t.Fatalf("unexpected advance mode: %q", meta.AdvanceFrom)
	}
	if meta.ProcessedAt == nil || !meta.ProcessedAt.Equal(time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected processed at: %v", meta.ProcessedAt)
	}
	if meta.SeriesID != "series-1" {
		t.Fatalf("unexpected series: %q", meta.SeriesID)
	}
}

func TestMetaFromTaskIgnoresMalformedValues(t *testing.T) {
	task := Task{
		ID:   "t1",
		Text: "x",
		Attrs: map[AttrKind]string{
			AttrDue:         "whenever",
			AttrCompleted:   "not a timestamp",
			AttrAdvanceFrom: "sideways",
		},
	}
	meta := MetaFromTask(task, time.UTC)
	if meta.Due != nil || meta.CompletedAt != nil {
		t.Fatalf("malformed values should read as absent: %+v", meta)
	}
	if meta.AdvanceFrom != "" {
		t.Fatalf("unknown advance mode should read as unset: %q", meta.AdvanceFrom)
	}
	if meta.Scheduled() {
		t.Fatal("no valid dates means not scheduled")
	}
}

func TestSnapshotCapturesLocation(t *testing.T) {
	task := Task{
		ID:       "t1",
		ParentID: "p1",
		Order:    4,
		Text:     "[x] archive me",
		Props:    map[string]string{"color": "blue"},
		Attrs:    map[AttrKind]string{AttrCompleted: "2026-03-11T12:00:00Z"},
	}
	snap := Snapshot(task)
	if snap.TaskID != "t1" || snap.ParentID != "p1" || snap.Order != 4 {
		t.Fatalf("snapshot lost location: %+v", snap)
	}
	if snap.Text != "[x] archive me" {
		t.Fatalf("snapshot lost text: %q", snap.Text)
	}
	task.Props["color"] = "red"
	if snap.Props["color"] != "blue" {
		t.Fatal("snapshot aliases live props")
	}
}

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/attendly/attendly-cli/internal/model"
)

func at(h, m int) *time.Time {
	t := time.Date(2026, 8, 3, h, m, 0, 0, time.UTC)
	return &t
}

func rows() []model.AttendanceSummary {
	return []model.AttendanceSummary{
		{Attendance: model.Attendance{Date: "2026-08-03", CheckInTime: at(9, 0), CheckOutTime: at(17, 30)}},
		{Attendance: model.Attendance{Date: "2026-08-04", CheckInTime: at(9, 15)}},
		{Attendance: model.Attendance{Date: "2026-08-05"}},
		{Attendance: model.Attendance{Date: "2026-08-06", CheckInTime: at(8, 0), CheckOutTime: at(16, 0)}},
	}
}

func Test_Summarize(t *testing.T) {
	t.Parallel()

	st := Summarize(rows())
	if st.TotalDays != 4 || st.PresentDays != 3 || st.CompleteDays != 2 {
		t.Fatalf("day counts: %+v", st)
	}
	// 8.5h + 8h worked
	if st.TotalHours != 16.5 {
		t.Fatalf("TotalHours=%v, want 16.5", st.TotalHours)
	}
	if st.AverageHours != 8.3 {
		t.Fatalf("AverageHours=%v, want 8.3", st.AverageHours)
	}
	if st.AttendanceRate != 75 {
		t.Fatalf("AttendanceRate=%v, want 75", st.AttendanceRate)
	}
}

func Test_Summarize_Empty(t *testing.T) {
	t.Parallel()

	st := Summarize(nil)
	if st.TotalDays != 0 || st.TotalHours != 0 || st.AverageHours != 0 || st.AttendanceRate != 0 {
		t.Fatalf("empty stats: %+v", st)
	}
}

func Test_StatusLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, out *time.Time
		want    string
	}{
		{nil, nil, "Absent"},
		{at(9, 0), nil, "Incomplete"},
		{at(9, 0), at(17, 0), "Complete"},
	}
	for _, c := range cases {
		got := StatusLabel(model.AttendanceSummary{Attendance: model.Attendance{CheckInTime: c.in, CheckOutTime: c.out}})
		if got != c.want {
			t.Fatalf("StatusLabel(in=%v out=%v)=%q, want %q", c.in, c.out, got, c.want)
		}
	}
}

func Test_WorkingHours(t *testing.T) {
	t.Parallel()

	if got := WorkingHours(nil, at(17, 0)); got != "--:--" {
		t.Fatalf("missing check-in: %q", got)
	}
	if got := WorkingHours(at(9, 0), at(17, 30)); got != "08:30" {
		t.Fatalf("8.5h day: %q", got)
	}
	if got := WorkingHours(at(9, 0), at(9, 5)); got != "00:05" {
		t.Fatalf("short day: %q", got)
	}
}

func Test_WriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows()[:2]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Date,Check In,Check Out,Working Hours,Status" {
		t.Fatalf("header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2026-08-03,") || !strings.HasSuffix(lines[1], ",08:30,Complete") {
		t.Fatalf("row 1: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",--:--,--:--,Incomplete") {
		t.Fatalf("row 2: %q", lines[2])
	}
}

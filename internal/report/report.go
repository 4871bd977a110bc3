// Package report computes attendance statistics and renders the CSV export
// for a date-ranged summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/attendly/attendly-cli/internal/model"
)

// Stats aggregates a ranged attendance report.
type Stats struct {
	TotalDays      int
	PresentDays    int     // days with a check-in
	CompleteDays   int     // days with both check-in and check-out
	TotalHours     float64 // rounded to 0.1h
	AverageHours   float64 // per complete day, rounded to 0.1h
	AttendanceRate int     // percent of days present
}

// Summarize folds summary rows into Stats.
func Summarize(rows []model.AttendanceSummary) Stats {
	st := Stats{TotalDays: len(rows)}
	var total float64
	for _, r := range rows {
		if r.CheckInTime != nil {
			st.PresentDays++
		}
		if r.CheckInTime != nil && r.CheckOutTime != nil {
			st.CompleteDays++
			total += r.CheckOutTime.Sub(*r.CheckInTime).Hours()
		}
	}
	st.TotalHours = math.Round(total*10) / 10
	if st.CompleteDays > 0 {
		st.AverageHours = math.Round(total/float64(st.CompleteDays)*10) / 10
	}
	if st.TotalDays > 0 {
		st.AttendanceRate = int(math.Round(float64(st.PresentDays) / float64(st.TotalDays) * 100))
	}
	return st
}

// StatusLabel classifies a day for reporting.
func StatusLabel(r model.AttendanceSummary) string {
	switch {
	case r.CheckInTime == nil:
		return "Absent"
	case r.CheckOutTime == nil:
		return "Incomplete"
	default:
		return "Complete"
	}
}

func clockTime(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Local().Format("15:04")
}

// WorkingHours renders the worked duration as HH:MM, or the placeholder for
// incomplete days.
func WorkingHours(in, out *time.Time) string {
	if in == nil || out == nil {
		return "--:--"
	}
	d := out.Sub(*in)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// WriteCSV renders rows in the summary export format:
// Date, Check In, Check Out, Working Hours, Status.
func WriteCSV(w io.Writer, rows []model.AttendanceSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Check In", "Check Out", "Working Hours", "Status"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Date,
			clockTime(r.CheckInTime),
			clockTime(r.CheckOutTime),
			WorkingHours(r.CheckInTime, r.CheckOutTime),
			StatusLabel(r),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

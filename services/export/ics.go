// Package export renders a submitted week in formats other tools can import.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"officescheduler/models"
)

const (
	ICSProductID = "-//Office Scheduler//Weekly Shifts//VI"
	ICSTimezone  = "Asia/Ho_Chi_Minh"
	ICSUTCOffset = "+0700"
	dateLayout   = "2006-01-02"
)

// WeekStart returns the Monday of the week containing date.
func WeekStart(date string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("export: invalid date %q: %w", date, err)
	}
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset), nil
}

// parseRange reads a compact "10h00-12h00" range.
func parseRange(r string) (startH, startM, endH, endM int, err error) {
	_, err = fmt.Sscanf(r, "%dh%d-%dh%d", &startH, &startM, &endH, &endM)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("export: invalid time range %q", r)
	}
	return startH, startM, endH, endM, nil
}

func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}

func kindLabel(k models.BlockKind) string {
	if k == models.KindMandatory {
		return "Ca bắt buộc"
	}
	return "Ca tự chọn"
}

// ICS renders payload as an iCalendar document. Each shift becomes one timed
// event on its weekday of the week containing payload.SelectedDate. Shifts
// with an unknown day or range are skipped.
func ICS(payload models.SubmissionPayload, now time.Time) ([]byte, error) {
	monday, err := WeekStart(payload.SelectedDate)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", ICSProductID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:%s", escapeText(fmt.Sprintf("%s - %s", payload.TeamName, payload.UserName)))
	line("X-WR-TIMEZONE:%s", ICSTimezone)

	// Vietnam has kept +07:00 without daylight saving since 1975.
	line("BEGIN:VTIMEZONE")
	line("TZID:%s", ICSTimezone)
	line("BEGIN:STANDARD")
	line("DTSTART:19700101T000000")
	line("TZOFFSETFROM:%s", ICSUTCOffset)
	line("TZOFFSETTO:%s", ICSUTCOffset)
	line("TZNAME:ICT")
	line("END:STANDARD")
	line("END:VTIMEZONE")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, s := range payload.Shifts {
		idx := models.DayIndex(s.Day)
		if idx < 0 {
			continue
		}
		sh, sm, eh, em, err := parseRange(s.TimeRange)
		if err != nil {
			continue
		}
		day := monday.AddDate(0, 0, idx)
		start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, time.UTC)
		end := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, time.UTC)

		uid := fmt.Sprintf("%s-%02d%02d-%s@officescheduler", start.Format("20060102"), sh, sm,
			strings.ReplaceAll(strings.ToLower(payload.UserEmail), "@", "."))

		line("BEGIN:VEVENT")
		line("UID:%s", uid)
		line("DTSTAMP:%s", stamp)
		line("DTSTART;TZID=%s:%s", ICSTimezone, start.Format("20060102T150405"))
		line("DTEND;TZID=%s:%s", ICSTimezone, end.Format("20060102T150405"))
		line("SUMMARY:%s", escapeText(fmt.Sprintf("%s (%s)", payload.TeamName, kindLabel(s.Kind))))
		line("DESCRIPTION:%s", escapeText(fmt.Sprintf("%s, %s %s", payload.UserName, s.Day, s.TimeRange)))
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return b.Bytes(), nil
}

// Filename is the attachment name for a payload's calendar.
func Filename(payload models.SubmissionPayload) string {
	name := strings.ReplaceAll(strings.TrimSpace(payload.UserName), " ", "_")
	if name == "" {
		name = "lich"
	}
	return fmt.Sprintf("lich_lam_viec_%s_%s.ics", name, payload.SelectedDate)
}

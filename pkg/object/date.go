package object

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var zoneSuffix = regexp.MustCompile(`([+-])([0-9]{2}):([0-9]{2})$`)

// EncodeDate renders a Date the way the remote API expects: the local
// wall-clock instant (seconds minus the offset) as ISO-8601 truncated
// to whole seconds, with a ±HH:MM zone suffix whose sign is inverted
// relative to the stored minutes-west offset.
func EncodeDate(d Date) string {
	local := time.Unix(d.Seconds-int64(d.Offset)*60, 0).UTC()
	sign := "+"
	offset := d.Offset
	if offset > 0 {
		sign = "-"
	} else {
		offset = -offset
	}
	return fmt.Sprintf("%s%s%02d:%02d", local.Format("2006-01-02T15:04:05"), sign, offset/60, offset%60)
}

// ParseDate recovers a Date from an ISO-8601 string. The zone offset is
// extracted from a trailing ±HH:MM suffix; a missing suffix (or "Z")
// yields offset 0.
func ParseDate(s string) (Date, error) {
	offset := 0
	if m := zoneSuffix.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		offset = hours*60 + minutes
		if m[1] == "+" {
			offset = -offset
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return Date{}, fmt.Errorf("parse date %q: %w", s, err)
		}
	}
	return Date{Seconds: t.Unix(), Offset: offset}, nil
}

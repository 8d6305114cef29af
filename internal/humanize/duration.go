// Package humanize turns elapsed durations into sentences such as
// "1 hour, 1 minute and 1 second".
package humanize

import (
	"fmt"
	"strings"
	"time"
)

// Parts is a duration split into whole days, hours, minutes and seconds.
// There are no calendar semantics: a day is always 86400 seconds.
type Parts struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Decompose splits a non-negative second count by successive division.
// Negative input is treated as zero.
func Decompose(total int64) Parts {
	if total < 0 {
		total = 0
	}
	minutes := total / 60
	hours := minutes / 60
	return Parts{
		Days:    hours / 24,
		Hours:   hours % 24,
		Minutes: minutes % 60,
		Seconds: total % 60,
	}
}

// TotalSeconds reassembles the second count.
func (p Parts) TotalSeconds() int64 {
	return p.Days*86400 + p.Hours*3600 + p.Minutes*60 + p.Seconds
}

// Labels lists one "N unit(s)" entry per non-zero unit, largest first.
func (p Parts) Labels() []string {
	units := []struct {
		n    int64
		name string
	}{
		{p.Days, "day"},
		{p.Hours, "hour"},
		{p.Minutes, "minute"},
		{p.Seconds, "second"},
	}
	var labels []string
	for _, u := range units {
		if u.n == 0 {
			continue
		}
		name := u.name
		if u.n > 1 {
			name += "s"
		}
		labels = append(labels, fmt.Sprintf("%d %s", u.n, name))
	}
	return labels
}

// Duration formats d as a sentence. The sub-second remainder is dropped and
// negative durations count as zero. ok is false when nothing readable is left,
// which happens for anything under one second.
func Duration(d time.Duration) (string, bool) {
	return Seconds(int64(d / time.Second))
}

// Seconds formats a whole-second count; see Duration.
func Seconds(total int64) (string, bool) {
	s := Join(Decompose(total).Labels())
	return s, s != ""
}

// Join joins parts as "a, b and c". No comma precedes the final "and".
func Join(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	last := len(parts) - 1
	return strings.Join(parts[:last], ", ") + " and " + parts[last]
}

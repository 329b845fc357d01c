// Package schedule turns a set of discovered video files into an ordered
// broadcast plan: files are grouped by day, ordered by sequence number and
// given evenly spaced start times.
//
// Every function here is pure and safe for concurrent use.
package schedule

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"simlive/internal/naming"
)

// Config holds the parameters that drive start time assignment.
type Config struct {
	IntervalHours  int            // Hours between consecutive starts within a day.
	DayStartHour   int            // Anchor hour of the first entry of a day.
	DayStartMinute int            // Anchor minute of the first entry of a day.
	Location       *time.Location // Civil time zone of the anchor. Nil means time.Local.
}

// VideoFile is a video whose name matched the naming pattern.
type VideoFile struct {
	Name     string // File name without extension.
	FileName string
	Day      int
	Month    int
	Sequence int
	URL      string
}

// Key identifies a day group.
type Key struct {
	Day   int
	Month int
}

func (k Key) String() string {
	return fmt.Sprintf("%02d-%02d", k.Day, k.Month)
}

// Entry is a VideoFile with its assigned start time.
type Entry struct {
	VideoFile
	Start time.Time
}

// Group is every entry of one (day, month), ordered by sequence number.
type Group struct {
	Key     Key
	Entries []Entry
}

// Partition groups files by (day, month). Groups appear in the order their key
// was first seen in files; within a group, files are stably sorted by
// sequence so duplicates keep discovery order. Start times are left zero.
func Partition(files []VideoFile) []Group {
	var groups []Group
	index := make(map[Key]int)
	for _, f := range files {
		k := Key{Day: f.Day, Month: f.Month}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Entries = append(groups[i].Entries, Entry{VideoFile: f})
	}
	for _, g := range groups {
		sort.SliceStable(g.Entries, func(a, b int) bool {
			return g.Entries[a].Sequence < g.Entries[b].Sequence
		})
	}
	return groups
}

// Anchor returns the start of the first entry of the (day, month) group.
func Anchor(k Key, year int, cfg Config) time.Time {
	return slot(k, year, cfg, 0)
}

// slot returns the wall-clock start of the i-th entry of group k. Offsets are
// applied to the civil hour and normalized by time.Date, so a daylight saving
// change inside the day does not shift later entries. A wall time that falls
// in a spring-forward gap is moved forward by the gap.
func slot(k Key, year int, cfg Config, i int) time.Time {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	hour := cfg.DayStartHour + i*cfg.IntervalHours
	return time.Date(year, time.Month(k.Month), k.Day, hour, cfg.DayStartMinute, 0, 0, loc)
}

// Build groups files and assigns the i-th entry of each group the wall-clock
// start anchor + i*IntervalHours. The interval is not validated here.
func Build(files []VideoFile, cfg Config, year int) []Group {
	groups := Partition(files)
	for _, g := range groups {
		for i := range g.Entries {
			g.Entries[i].Start = slot(g.Key, year, cfg, i)
		}
	}
	return groups
}

// Flatten emits the entries of groups in group order, keeping the order
// within each group.
func Flatten(groups []Group) []Entry {
	n := 0
	for _, g := range groups {
		n += len(g.Entries)
	}
	entries := make([]Entry, 0, n)
	for _, g := range groups {
		entries = append(entries, g.Entries...)
	}
	return entries
}

// TitleFor returns titles[i], or a "Stream N" placeholder when titles is too
// short.
func TitleFor(titles []string, i int) string {
	if i >= 0 && i < len(titles) {
		return titles[i]
	}
	return fmt.Sprintf("Stream %d", i+1)
}

// SkipReason says why a file was left out of a plan.
type SkipReason string

const (
	SkipNoMatch     SkipReason = "name does not match pattern"
	SkipZeroField   SkipReason = "day, month or sequence is zero"
	SkipInvalidDate SkipReason = "day and month are not a calendar date"
)

// Skipped is a file that was not scheduled.
type Skipped struct {
	FileName string
	Reason   SkipReason
}

// Plan is the ordered schedule for one run.
type Plan struct {
	Groups  []Group
	Entries []Entry
	Skipped []Skipped
}

// NewVideoFile parses fileName and resolves its source URL against baseURL.
// The returned reason is empty when the file can be scheduled in year.
func NewVideoFile(fileName, baseURL string, year int) (VideoFile, SkipReason) {
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	vn, ok := naming.ParseVideoName(stem)
	if !ok {
		return VideoFile{}, SkipNoMatch
	}
	if vn.Day == 0 || vn.Month == 0 || vn.Sequence == 0 {
		return VideoFile{}, SkipZeroField
	}
	if !validDate(year, vn.Month, vn.Day) {
		return VideoFile{}, SkipInvalidDate
	}
	return VideoFile{
		Name:     stem,
		FileName: fileName,
		Day:      vn.Day,
		Month:    vn.Month,
		Sequence: vn.Sequence,
		URL:      baseURL + fileName,
	}, ""
}

// validDate reports whether month/day exists in year without normalization.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Month() == time.Month(month) && t.Day() == day
}

// NewPlan builds the plan for fileNames as listed by discovery. Names that
// cannot be scheduled are reported in Skipped rather than as errors; an empty
// input yields an empty plan.
func NewPlan(fileNames []string, baseURL string, cfg Config, year int) Plan {
	var (
		files   []VideoFile
		skipped []Skipped
	)
	for _, fn := range fileNames {
		vf, reason := NewVideoFile(fn, baseURL, year)
		if reason != "" {
			skipped = append(skipped, Skipped{FileName: fn, Reason: reason})
			continue
		}
		files = append(files, vf)
	}
	groups := Build(files, cfg, year)
	return Plan{
		Groups:  groups,
		Entries: Flatten(groups),
		Skipped: skipped,
	}
}

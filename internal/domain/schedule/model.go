package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const MatchDateLayout = "2006-01-02"

var ErrInvalidSchedule = errors.New("invalid schedule")

// GameDay is a recurring weekly fixture slot.
type GameDay struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location string
}

func (d GameDay) Kickoff() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Schedule maps weekdays to kickoff times in the club's time zone.
type Schedule struct {
	days map[time.Weekday]GameDay
	loc  *time.Location
}

func New(loc *time.Location, days ...GameDay) (Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := Schedule{days: make(map[time.Weekday]GameDay, len(days)), loc: loc}
	for _, d := range days {
		if d.Weekday < time.Sunday || d.Weekday > time.Saturday {
			return Schedule{}, fmt.Errorf("%w: weekday %d out of range", ErrInvalidSchedule, d.Weekday)
		}
		if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 {
			return Schedule{}, fmt.Errorf("%w: kickoff %s out of range", ErrInvalidSchedule, d.Kickoff())
		}
		if _, dup := out.days[d.Weekday]; dup {
			return Schedule{}, fmt.Errorf("%w: weekday %d listed twice", ErrInvalidSchedule, d.Weekday)
		}
		out.days[d.Weekday] = d
	}
	return out, nil
}

// Parse reads "<weekday 0-6>=<HH:MM>[@location]" items separated by ';'.
func Parse(raw string, loc *time.Location) (Schedule, error) {
	days := make([]GameDay, 0, 7)
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		dayPart, rest, ok := strings.Cut(item, "=")
		if !ok {
			return Schedule{}, fmt.Errorf("%w: item %q, expected weekday=HH:MM", ErrInvalidSchedule, item)
		}
		weekday, err := strconv.Atoi(strings.TrimSpace(dayPart))
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: weekday in %q: %v", ErrInvalidSchedule, item, err)
		}

		kickoff, location, _ := strings.Cut(rest, "@")
		clock, err := time.Parse("15:04", strings.TrimSpace(kickoff))
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: kickoff in %q: %v", ErrInvalidSchedule, item, err)
		}

		days = append(days, GameDay{
			Weekday:  time.Weekday(weekday),
			Hour:     clock.Hour(),
			Minute:   clock.Minute(),
			Location: strings.TrimSpace(location),
		})
	}

	return New(loc, days...)
}

func (s Schedule) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

func (s Schedule) Days() []GameDay {
	out := make([]GameDay, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out
}

// GameDayOn reports the slot scheduled on the calendar day containing t.
func (s Schedule) GameDayOn(t time.Time) (GameDay, bool) {
	d, ok := s.days[t.In(s.Location()).Weekday()]
	return d, ok
}

// KickoffOn returns the kickoff instant on the calendar day containing t.
func (s Schedule) KickoffOn(t time.Time) (time.Time, bool) {
	d, ok := s.GameDayOn(t)
	if !ok {
		return time.Time{}, false
	}
	local := t.In(s.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, s.Location()), true
}

// KickoffPassed is true when now falls on a game day at or after kickoff.
func (s Schedule) KickoffPassed(now time.Time) bool {
	kickoff, ok := s.KickoffOn(now)
	return ok && !now.Before(kickoff)
}

func (s Schedule) MatchDate(t time.Time) string {
	return t.In(s.Location()).Format(MatchDateLayout)
}

// StartOfDay parses a match date into local midnight.
func (s Schedule) StartOfDay(matchDate string) (time.Time, error) {
	day, err := time.ParseInLocation(MatchDateLayout, strings.TrimSpace(matchDate), s.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse match date %q: %w", matchDate, err)
	}
	return day, nil
}

// EndOfDay is local midnight following the calendar day containing t.
func (s Schedule) EndOfDay(t time.Time) time.Time {
	local := t.In(s.Location())
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, s.Location())
}

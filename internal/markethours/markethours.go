package markethours

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// ET is the exchange location (US Eastern, DST aware).
var ET = mustLoad("America/New_York")

// Session hours in ET. The first bar of a session closes at 09:35.
const (
	FirstSlotHour   = 9
	FirstSlotMinute = 35
	CloseHour       = 16
	CloseMinute     = 0

	SlotMinutes     = 5
	SlotsPerSession = 78

	// SlotsPerDayStride spaces weekdays apart in the sequence index.
	SlotsPerDayStride = 90
)

// SlotDuration is the width of one candle.
const SlotDuration = SlotMinutes * time.Minute

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// OpeningTime is the time-of-day string of a session's first slot.
var OpeningTime = fmt.Sprintf("%02d:%02d", FirstSlotHour, FirstSlotMinute)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// CurrentSessionEnd returns 16:00 ET of the current trading session.
// Saturday and Sunday roll back to Friday. Holidays are not handled.
func CurrentSessionEnd(now time.Time) time.Time {
	et := now.In(ET)
	end := time.Date(et.Year(), et.Month(), et.Day(), CloseHour, CloseMinute, 0, 0, ET)
	switch end.Weekday() {
	case time.Saturday:
		end = end.AddDate(0, 0, -1)
	case time.Sunday:
		end = end.AddDate(0, 0, -2)
	}
	return end
}

// PriorSessionEnd returns 16:00 ET of the weekday before the current session.
func PriorSessionEnd(now time.Time) time.Time {
	end := CurrentSessionEnd(now).AddDate(0, 0, -1)
	for !IsWeekday(end) {
		end = end.AddDate(0, 0, -1)
	}
	return end
}

// IsWeekday returns true if t is Mon–Fri in ET.
func IsWeekday(t time.Time) bool {
	wd := t.In(ET).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// SessionOpen returns the first slot (09:35 ET) on the day of end.
func SessionOpen(end time.Time) time.Time {
	et := end.In(ET)
	return time.Date(et.Year(), et.Month(), et.Day(), FirstSlotHour, FirstSlotMinute, 0, 0, ET)
}

// Slots returns every slot timestamp of the session ending at end, oldest first.
func Slots(end time.Time) []time.Time {
	open := SessionOpen(end)
	slots := make([]time.Time, SlotsPerSession)
	for i := range slots {
		slots[i] = open.Add(time.Duration(i) * SlotDuration)
	}
	return slots
}

// SlotIndex returns the 0-based slot of t within its session (09:35 = 0, 16:00 = 77),
// or -1 when t is not an aligned in-session bar close.
func SlotIndex(t time.Time) int {
	et := t.In(ET)
	if et.Second() != 0 || et.Nanosecond() != 0 {
		return -1
	}
	minutes := et.Hour()*60 + et.Minute() - (FirstSlotHour*60 + FirstSlotMinute)
	if minutes < 0 || minutes%SlotMinutes != 0 {
		return -1
	}
	idx := minutes / SlotMinutes
	if idx >= SlotsPerSession {
		return -1
	}
	return idx
}

// SequenceIndex orders candles within a week without date math.
func SequenceIndex(t time.Time) int {
	return SlotIndex(t) + SlotsPerDayStride*int(t.In(ET).Weekday())
}

// Projection holds the string keys derived from a timestamp.
type Projection struct {
	SessionDate string
	TimeOfDay   string
	WeekOfYear  string
	DayOfWeek   string
}

// Project derives the comparison keys of t in ET.
func Project(t time.Time) Projection {
	et := t.In(ET)
	year, week := et.ISOWeek()
	return Projection{
		SessionDate: et.Format(dateLayout),
		TimeOfDay:   et.Format(timeLayout),
		WeekOfYear:  fmt.Sprintf("%d-W%02d", year, week),
		DayOfWeek:   et.Weekday().String()[:3],
	}
}

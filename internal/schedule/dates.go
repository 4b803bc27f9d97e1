package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date resolution for spoken preferences like "tomorrow", "next monday" or
// "20 November". Ambiguous month+day references prefer the future: a date
// already past this year rolls over to next year.

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Ordered so a two-weekday utterance resolves to the one spoken first,
// via the earliest match position below.
var weekdayNames = []struct {
	word string
	day  time.Weekday
}{
	{"monday", time.Monday}, {"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday}, {"thursday", time.Thursday},
	{"friday", time.Friday}, {"saturday", time.Saturday},
	{"sunday", time.Sunday},
	{"mon", time.Monday}, {"tues", time.Tuesday}, {"tue", time.Tuesday},
	{"wed", time.Wednesday}, {"thurs", time.Thursday}, {"thur", time.Thursday},
	{"thu", time.Thursday}, {"fri", time.Friday}, {"sat", time.Saturday},
	{"sun", time.Sunday},
}

var (
	monthDayRE = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)
	numericRE  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
	inDaysRE   = regexp.MustCompile(`(?i)\bin\s+(\d{1,2})\s+days?\b`)
	bareDayRE  = regexp.MustCompile(`(?i)\b(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)\b`)
)

// ParsePreferredDate resolves free text to a calendar date at midnight in
// now's location. Returns ok=false when no date reference is recognized;
// the caller chooses the fallback.
func ParsePreferredDate(text string, now time.Time) (time.Time, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return time.Time{}, false
	}
	today := midnight(now)

	switch {
	case strings.Contains(msg, "day after tomorrow"):
		return today.AddDate(0, 0, 2), true
	case strings.Contains(msg, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(msg, "today") || msg == "now":
		return today, true
	case strings.Contains(msg, "next week"):
		return today.AddDate(0, 0, 7), true
	}

	if m := inDaysRE.FindStringSubmatch(msg); len(m) > 1 {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n), true
	}

	// Month + day in either order: "november 20", "20th november".
	if m := monthDayRE.FindStringSubmatch(msg); len(m) > 2 {
		if d, ok := resolveMonthDay(m[1], m[2], today); ok {
			return d, true
		}
	}
	if m := dayMonthRE.FindStringSubmatch(msg); len(m) > 2 {
		if d, ok := resolveMonthDay(m[2], m[1], today); ok {
			return d, true
		}
	}

	// Weekday name: next occurrence strictly after today. When several
	// weekdays are mentioned, the one spoken first wins.
	bestIdx, bestDay := -1, time.Sunday
	for _, wn := range weekdayNames {
		if idx := indexWord(msg, wn.word); idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			bestIdx, bestDay = idx, wn.day
		}
	}
	if bestIdx >= 0 {
		ahead := (int(bestDay) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return today.AddDate(0, 0, ahead), true
	}

	// Numeric day-first date: "20/11", "20-11-2026".
	if m := numericRE.FindStringSubmatch(msg); len(m) > 2 {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			year := today.Year()
			if m[3] != "" {
				if y, err := strconv.Atoi(m[3]); err == nil {
					if y < 100 {
						y += 2000
					}
					year = y
				}
			}
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
			if m[3] == "" && d.Before(today) {
				d = d.AddDate(1, 0, 0)
			}
			return d, true
		}
	}

	// Bare ordinal day: "the 20th" means the next 20th.
	if m := bareDayRE.FindStringSubmatch(msg); len(m) > 1 {
		day, _ := strconv.Atoi(m[1])
		if day >= 1 && day <= 31 {
			d := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location())
			for d.Before(today) {
				d = time.Date(d.Year(), d.Month()+1, day, 0, 0, 0, 0, today.Location())
			}
			return d, true
		}
	}

	return time.Time{}, false
}

func resolveMonthDay(monthStr string, dayStr string, today time.Time) (time.Time, bool) {
	month, ok := monthNames[strings.ToLower(monthStr)]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(dayStr)
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
	if d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return d, true
}

// indexWord returns the position of the first standalone occurrence of
// word in msg, or -1. Occurrences embedded in a longer word ("mondays")
// are skipped, not treated as misses.
func indexWord(msg, word string) int {
	for start := 0; ; {
		idx := strings.Index(msg[start:], word)
		if idx < 0 {
			return -1
		}
		idx += start
		end := idx + len(word)
		leftOK := idx == 0 || !isWordChar(msg[idx-1])
		rightOK := end == len(msg) || !isWordChar(msg[end])
		if leftOK && rightOK {
			return idx
		}
		start = idx + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Package locale carries the display locale used for period labels.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.TraditionalChinese,
	language.SimplifiedChinese,
}

var matcher = language.NewMatcher(supported)

// Locale is an explicit formatting locale. The zero value formats as English.
type Locale struct {
	tag language.Tag
}

func Default() Locale {
	return Locale{tag: language.English}
}

// Parse maps a BCP 47 string to the closest supported locale. Unknown or
// malformed input falls back to English.
func Parse(s string) Locale {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default()
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Default()
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	return Locale{tag: supported[idx]}
}

func (l Locale) Tag() language.Tag {
	if l.tag == language.Und {
		return language.English
	}
	return l.tag
}

func (l Locale) String() string {
	return l.Tag().String()
}

func (l Locale) chinese() bool {
	base, _ := l.Tag().Base()
	return base.String() == "zh"
}

var zhWeekdays = [...]string{"日", "一", "二", "三", "四", "五", "六"}

// WeekdayShort labels a day of the week bucket.
func (l Locale) WeekdayShort(d time.Weekday) string {
	if l.chinese() {
		prefix := "週"
		if l.Tag() == language.SimplifiedChinese {
			prefix = "周"
		}
		return prefix + zhWeekdays[d]
	}
	return d.String()[:3]
}

// MonthShort labels a month bucket.
func (l Locale) MonthShort(m time.Month) string {
	if l.chinese() {
		return fmt.Sprintf("%d月", int(m))
	}
	return m.String()[:3]
}

// MonthDay labels a single day as month/day.
func (l Locale) MonthDay(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

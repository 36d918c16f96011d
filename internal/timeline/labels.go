package timeline

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Locale selects the wording of relative-day labels.
type Locale string

const (
	English Locale = "en"
	French  Locale = "fr"
	Chinese Locale = "zh"
)

var (
	supportedTags = []language.Tag{language.English, language.French, language.Chinese}
	localeMatcher = language.NewMatcher(supportedTags)
)

type labelSet struct {
	dayAgo   string
	daysAgo  string
	today    string
	tomorrow string
	inDays   string
}

var catalog = map[Locale]labelSet{
	English: {
		dayAgo:   "1 day ago",
		daysAgo:  "%d days ago",
		today:    "Today",
		tomorrow: "Tomorrow",
		inDays:   "in %d days",
	},
	French: {
		dayAgo:   "il y a 1 jour",
		daysAgo:  "il y a %d jours",
		today:    "Aujourd'hui",
		tomorrow: "Demain",
		inDays:   "dans %d jours",
	},
	Chinese: {
		dayAgo:   "1 天前",
		daysAgo:  "%d 天前",
		today:    "今天",
		tomorrow: "明天",
		inDays:   "%d 天后",
	},
}

// MatchLocale picks the best supported locale for the given language
// preferences (query values or Accept-Language headers). English is the
// fallback.
func MatchLocale(prefs ...string) Locale {
	tag, _ := language.MatchStrings(localeMatcher, prefs...)
	base, _ := tag.Base()
	switch base.String() {
	case "fr":
		return French
	case "zh":
		return Chinese
	default:
		return English
	}
}

// Label renders a days-remaining value.
func Label(days int, loc Locale) string {
	set, ok := catalog[loc]
	if !ok {
		set = catalog[English]
	}
	switch {
	case days == -1:
		return set.dayAgo
	case days < 0:
		return fmt.Sprintf(set.daysAgo, -days)
	case days == 0:
		return set.today
	case days == 1:
		return set.tomorrow
	default:
		return fmt.Sprintf(set.inDays, days)
	}
}

// DaysRemainingLabel is Label applied to DaysRemaining(target, today).
func DaysRemainingLabel(target, today time.Time, loc Locale) string {
	return Label(DaysRemaining(target, today), loc)
}

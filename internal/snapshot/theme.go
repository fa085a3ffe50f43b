package snapshot

// Background theme hints. The renderer maps (status, timeBand, variant) to
// an actual asset; the producer only promises a deterministic, stable
// lookup for identical inputs.

// displayContext is the priority-ordered situation the widget reflects.
type displayContext string

const (
	contextCelebration      displayContext = "celebration"
	contextEndOfDay         displayContext = "endOfDay"
	contextAllDailyComplete displayContext = "allDailyComplete"
	contextLongTermFocus    displayContext = "longTermFocus"
	contextDailyInProgress  displayContext = "dailyInProgress"
	contextMostUrgent       displayContext = "mostUrgent"
	contextEmpty            displayContext = "empty"
)

// timeBand is the coarse time-of-day band exposed as a theme hint.
type timeBand string

const (
	bandMorning   timeBand = "morning"
	bandAfternoon timeBand = "afternoon"
	bandEvening   timeBand = "evening"
	bandNight     timeBand = "night"
)

// Time band boundaries (hour of day, local time). Kept in sync with the
// CTA pool buckets so the prompt and the background agree on the mood.
const (
	bandMorningStart   = 5
	bandAfternoonStart = 12
	bandEveningStart   = 17
	bandNightStart     = 21
)

func timeBandFor(hour int) timeBand {
	switch {
	case hour >= bandMorningStart && hour < bandAfternoonStart:
		return bandMorning
	case hour >= bandAfternoonStart && hour < bandEveningStart:
		return bandAfternoon
	case hour >= bandEveningStart && hour < bandNightStart:
		return bandEvening
	default:
		return bandNight
	}
}

// statusFor maps a display context to a background status identifier.
func statusFor(dc displayContext) string {
	switch dc {
	case contextCelebration:
		return "celebrating"
	case contextAllDailyComplete, contextEndOfDay:
		return "resting"
	case contextEmpty:
		return "empty"
	case contextLongTermFocus, contextDailyInProgress, contextMostUrgent:
		return "onTrack"
	default:
		return "default"
	}
}

// variantCounts lists how many themed variants the renderer ships per
// status. fallbackVariant (0) is used when a status has no themed variant.
var variantCounts = map[string]int{
	"celebrating": 3,
	"resting":     2,
	"onTrack":     4,
	"empty":       2,
}

const fallbackVariant = 0

// variantFor deterministically picks a background variant from the status
// and the current hour.
func variantFor(status string, hour int) int {
	n, ok := variantCounts[status]
	if !ok || n <= 0 {
		return fallbackVariant
	}
	return hour % n
}

package cta

// Message pools. Selection between them is driven by the deterministic
// wall-clock rotation in Generate; within a pool, order matters because the
// rotation index is positional.

// timeBucket is the coarse time-of-day band used for pool selection.
type timeBucket string

const (
	bucketMorning   timeBucket = "morning"
	bucketAfternoon timeBucket = "afternoon"
	bucketEvening   timeBucket = "evening"
	bucketNight     timeBucket = "night"
)

// Time-of-day bucket boundaries (hour of day, local time).
const (
	morningStartHour   = 5
	afternoonStartHour = 12
	eveningStartHour   = 17
	nightStartHour     = 21
)

func bucketForHour(hour int) timeBucket {
	switch {
	case hour >= morningStartHour && hour < afternoonStartHour:
		return bucketMorning
	case hour >= afternoonStartHour && hour < eveningStartHour:
		return bucketAfternoon
	case hour >= eveningStartHour && hour < nightStartHour:
		return bucketEvening
	default:
		return bucketNight
	}
}

// emptyPools is shown when the user has no goals at all.
var emptyPools = map[timeBucket][]string{
	bucketMorning: {
		"Good morning! Set a goal to get started.",
		"A fresh day, a fresh start. Add your first goal!",
		"What do you want to achieve today?",
	},
	bucketAfternoon: {
		"No goals yet — the afternoon is still young.",
		"Add a goal and make the rest of today count.",
		"Halfway through the day. What's your target?",
	},
	bucketEvening: {
		"Evenings are great for planning. Add a goal for tomorrow!",
		"No goals set. Sketch out tomorrow tonight.",
		"Wind down and plan your next win.",
	},
	bucketNight: {
		"Rest up — tomorrow is a good day to start a goal.",
		"Dream big tonight, set the goal tomorrow.",
		"Late night? Jot down a goal before bed.",
	},
}

// completedDailyPool and completedLongTermPool are shown once the displayed
// goal has reached full progress.
var completedDailyPool = []string{
	"All done today — brilliant!",
	"Daily goal crushed. Enjoy the rest of your day!",
	"Done and dusted. See you tomorrow!",
	"That's a wrap for today. Nice work!",
}

var completedLongTermPool = []string{
	"Goal complete! Time to celebrate properly.",
	"You made it all the way. Incredible!",
	"Finished! What's the next big thing?",
}

// celebrationPool is shown while the mascot's celebrate override is live.
var celebrationPool = []string{
	"You did it! 🎉",
	"Another one in the books!",
	"That's how it's done!",
	"Streak fuel, logged.",
}

// celebrationTitleTemplates extend the celebration pool with goal-specific
// variants. %s is the goal title.
var celebrationTitleTemplates = []string{
	"\"%s\" — done! 🎉",
	"Nailed %s today!",
}

// levelPools contribute by urgency level.
var levelPools = map[string][]string{
	"low": {
		"Cruising along nicely.",
		"No rush — steady does it.",
		"You're ahead of the curve.",
	},
	"medium": {
		"A little push would go a long way.",
		"Now's a good moment to chip away at it.",
		"Keep the momentum going.",
	},
	"high": {
		"Time to focus — this one needs you.",
		"The clock is ticking on this goal.",
		"Don't let today slip away.",
	},
	"critical": {
		"Last chance — do it now!",
		"This goal is about to slip. Act!",
		"Right now or not today.",
	},
}

// Progress bucket boundaries over goal progress in [0,1].
const (
	earlyProgressMax   = 0.25
	nearCompleteCutoff = 0.75
)

// progressPools contribute by how far along the goal is.
var progressPools = map[string][]string{
	"early": {
		"Every big thing starts small.",
		"First steps count double.",
		"Just getting going — keep at it.",
	},
	"mid": {
		"Halfway there is momentum. Use it.",
		"Solid progress — stay on it.",
		"The middle is where goals are won.",
	},
	"nearComplete": {
		"So close you can taste it!",
		"One last push to the finish.",
		"Almost there — don't stop now.",
	},
}

// timePools contribute by time of day.
var timePools = map[timeBucket][]string{
	bucketMorning: {
		"Morning energy is the best energy.",
		"Start strong, coast later.",
	},
	bucketAfternoon: {
		"The afternoon is yours.",
		"Good time for a quick win.",
	},
	bucketEvening: {
		"Finish the day on a high note.",
		"One more effort before you rest.",
	},
	bucketNight: {
		"A quiet moment to move forward.",
		"Night owls get things done too.",
	},
}

// titleTemplates are goal-specific prompts mixed into the combined pool.
// %s is the goal title.
var titleTemplates = []string{
	"Time for %s?",
	"%s is waiting for you.",
	"A few minutes on %s would count.",
}

// progressLabelTemplates are used when the goal carries a human-readable
// progress label. %s is the label, e.g. "3/5 milestones".
var progressLabelTemplates = []string{
	"You're at %s — keep going!",
	"%s down. Onward!",
}

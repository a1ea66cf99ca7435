package progression

import (
	"sort"
	"time"
)

// CurrentStreak counts consecutive calendar days with at least one
// completion, ending today or yesterday relative to `now`. Any missed day,
// including a quiet today followed by a quiet yesterday, breaks the streak
// to zero. Day boundaries follow now's location; production injects a UTC
// clock so every caller agrees on them.
func CurrentStreak(completions []time.Time, now time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	loc := now.Location()

	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, c := range completions {
		day := midnight(c.In(loc))
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	yesterday := midnight(now).AddDate(0, 0, -1)
	if days[0].Before(yesterday) {
		return 0
	}

	streak := 1
	cursor := days[0]
	for i := 1; i < len(days); i++ {
		expected := cursor.AddDate(0, 0, -1)
		if !days[i].Equal(expected) {
			break
		}
		streak++
		cursor = days[i]
	}

	return streak
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package application

import "time"

// NextStreak computes the login streak transition for a successful login
// at "now" given the previous state. Days are compared on UTC calendar
// boundaries: a login on the very next day extends the streak, a larger
// gap resets it to 1, and a second login on the same day changes nothing.
func NextStreak(current, longest int, lastLogin, now time.Time) (int, int) {
	gap := dayNumber(now) - dayNumber(lastLogin)
	switch {
	case gap == 1:
		current++
	case gap > 1:
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

func dayNumber(t time.Time) int {
	u := t.UTC()
	return int(time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

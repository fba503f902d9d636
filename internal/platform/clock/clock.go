package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Seconds reads c and drops sub-second precision. Reading-session timestamps
// travel as epoch seconds, so everything stored locally is kept at that grain.
func Seconds(c Clock) time.Time {
	return c.Now().UTC().Truncate(time.Second)
}

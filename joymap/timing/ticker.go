package timing

import "time"

// DefaultPollInterval is the rate at which polling sources and the terminal
// frontend wake up. Short enough that synthesized releases land well inside
// the smallest container window (smart toggle, 250ms).
const DefaultPollInterval = 10 * time.Millisecond

// Ticker paces a polling loop with a time.Ticker.
type Ticker struct {
	ticker   *time.Ticker
	interval time.Duration
	C        <-chan time.Time
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	return &Ticker{
		ticker:   ticker,
		interval: interval,
		C:        ticker.C,
	}
}

// Wait blocks until the next tick.
func (t *Ticker) Wait() {
	<-t.C
}

func (t *Ticker) Reset() {
	t.ticker.Reset(t.interval)
}

func (t *Ticker) Stop() {
	t.ticker.Stop()
}

package watch

import (
	"strings"
	"time"
)

// Pulse lights up when new runs arrive and fades over the following seconds.
type Pulse struct {
	dots    int
	lastRun time.Time
}

func (p *Pulse) OnNewRuns(now time.Time) {
	p.dots = 5
	p.lastRun = now
}

// Decay fades the pulse based on time since the last new run.
func (p *Pulse) Decay(now time.Time) {
	if p.dots == 0 {
		return
	}
	elapsed := now.Sub(p.lastRun)
	switch {
	case elapsed > 10*time.Second:
		p.dots = 0
	case elapsed > 8*time.Second:
		p.dots = 1
	case elapsed > 6*time.Second:
		p.dots = 2
	case elapsed > 4*time.Second:
		p.dots = 3
	case elapsed > 2*time.Second:
		p.dots = 4
	}
}

func (p Pulse) Render(theme Theme) string {
	var b strings.Builder
	for i := range 5 {
		if i < p.dots {
			b.WriteString(theme.PulseActive.Render("●"))
		} else {
			b.WriteString(theme.PulseInactive.Render("○"))
		}
	}
	return b.String()
}

func (p Pulse) LastRun() time.Time {
	return p.lastRun
}

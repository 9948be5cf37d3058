package spawn

import (
	"time"

	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/sched"
)

const showerSpacing = 500 * time.Millisecond

// ShowerBurst fires count spikes alternating left/right lanes at 500ms
// intervals, each with the short shower warning profile. The registry's
// shower flag blocks ordinary spawning for the burst's duration. Every spike
// is tracked individually; onDone runs once, only after all of them have
// resolved. The returned cancel func stops un-fired spikes (already-falling
// ones resolve naturally) and suppresses onDone.
func ShowerBurst(sp *Spawner, count int, onDone func()) (cancel func()) {
	if count <= 0 {
		if onDone != nil {
			onDone()
		}
		return func() {}
	}

	sp.reg.SetShowering(true)

	fired := 0
	resolved := 0
	cancelled := false
	finished := false
	var burst *sched.Task

	finish := func() {
		if finished {
			return
		}
		finished = true
		sp.reg.SetShowering(false)
		if onDone != nil && !cancelled {
			onDone()
		}
	}

	// checkDone finishes once no more spikes will fire and every fired spike
	// has resolved.
	checkDone := func() {
		allOut := cancelled || fired >= count
		if allOut && resolved == fired {
			finish()
		}
	}

	fireNext := func() {
		if cancelled || fired >= count {
			return
		}
		x := common.LaneLeftX
		if fired%2 == 1 {
			x = common.LaneRightX
		}
		e, ok := sp.SpawnShowerSpike(x)
		fired++
		if ok {
			sp.OnResolved(e, func(component.Outcome) {
				resolved++
				checkDone()
			})
		} else {
			resolved++
		}
		if fired >= count {
			burst.Cancel()
			checkDone()
		}
	}

	fireNext()
	burst = sp.runner.Every(showerSpacing, fireNext)
	if fired >= count {
		// Single-spike burst already finished firing.
		burst.Cancel()
	}

	return func() {
		if cancelled {
			return
		}
		cancelled = true
		burst.Cancel()
		checkDone()
	}
}

// ShowerDuration is the nominal wall time of a burst of count spikes,
// including the final spike's warning and fall.
func ShowerDuration(count int) time.Duration {
	return showerSpacing*time.Duration(count) + 1500*time.Millisecond
}

// Package wave holds the three directors, the combo script runtime, and the
// level machine that sequences them.
package wave

import (
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/prefabs"
)

// ComboStep is one scripted action at an offset from the combo's start.
type ComboStep struct {
	At     time.Duration
	Action string
	X      float64
}

// ComboPlan is the result of evaluating one combo script against the current
// arena: the steps to schedule plus an extra pause appended after the last
// one.
type ComboPlan struct {
	Name  string
	Steps []ComboStep
	Pause time.Duration
}

// Duration is the span from the combo's start to the end of its pause.
func (p ComboPlan) Duration() time.Duration {
	var last time.Duration
	for _, s := range p.Steps {
		if s.At > last {
			last = s.At
		}
	}
	return last + p.Pause
}

// ComboNames are the scripted combos, in the order scripts were shipped.
var ComboNames = []string{"double_lane", "side_switch", "trap"}

type comboRuntime struct {
	compiled map[string]*tengo.Compiled
}

func newComboRuntime() *comboRuntime {
	return &comboRuntime{compiled: map[string]*tengo.Compiled{}}
}

// eval compiles (once) and runs the named script with the arena snapshot
// exposed as globals, then reads the steps and pause the script assembled.
func (c *comboRuntime) eval(name string, playerX float64, rollerLive bool) (ComboPlan, error) {
	compiled, ok := c.compiled[name]
	if !ok {
		src, err := prefabs.Script(name)
		if err != nil {
			return ComboPlan{}, fmt.Errorf("combo %q: %w", name, err)
		}
		script := tengo.NewScript(src)
		_ = script.Add("player_x", 0.0)
		_ = script.Add("lane_left", common.LaneLeftX)
		_ = script.Add("lane_right", common.LaneRightX)
		_ = script.Add("roller_live", false)
		script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
		compiled, err = script.Compile()
		if err != nil {
			return ComboPlan{}, fmt.Errorf("combo %q: %w", name, err)
		}
		c.compiled[name] = compiled
	}

	if err := compiled.Set("player_x", playerX); err != nil {
		return ComboPlan{}, err
	}
	if err := compiled.Set("roller_live", rollerLive); err != nil {
		return ComboPlan{}, err
	}
	if err := compiled.Run(); err != nil {
		return ComboPlan{}, fmt.Errorf("combo %q: %w", name, err)
	}

	plan := ComboPlan{Name: name}
	if compiled.IsDefined("pause") {
		plan.Pause = time.Duration(compiled.Get("pause").Int()) * time.Millisecond
	}

	raw, okArr := compiled.Get("steps").Value().([]interface{})
	if !okArr {
		return ComboPlan{}, fmt.Errorf("combo %q: steps is not an array", name)
	}
	for i, item := range raw {
		m, okMap := item.(map[string]interface{})
		if !okMap {
			return ComboPlan{}, fmt.Errorf("combo %q: step %d is not a map", name, i)
		}
		step := ComboStep{
			At:     time.Duration(asInt(m["at"])) * time.Millisecond,
			Action: asString(m["action"]),
			X:      asFloat(m["x"]),
		}
		if step.Action == "" {
			return ComboPlan{}, fmt.Errorf("combo %q: step %d has no action", name, i)
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

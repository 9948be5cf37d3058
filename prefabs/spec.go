package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TuningSpec is the full tuning sheet for one level run. Values the YAML
// leaves at zero fall back to the defaults in Defaults().
type TuningSpec struct {
	Spike  SpikeSpec  `yaml:"spike"`
	Roller RollerSpec `yaml:"roller"`
	Weaver WeaverSpec `yaml:"weaver"`
	Boss   BossSpec   `yaml:"boss"`
	Player PlayerSpec `yaml:"player"`
}

type SpikeSpec struct {
	WarnMs       int     `yaml:"warn_ms"`
	ShowerWarnMs int     `yaml:"shower_warn_ms"`
	Gravity      float64 `yaml:"gravity"`
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	SpawnY       float64 `yaml:"spawn_y"`
}

type RollerSpec struct {
	Speed  float64 `yaml:"speed"`
	Radius float64 `yaml:"radius"`
}

type WeaverSpec struct {
	FallSpeed float64 `yaml:"fall_speed"`
	Amplitude float64 `yaml:"amplitude"`
	Freq      float64 `yaml:"freq"`
	Width     float64 `yaml:"width"`
}

type BossSpec struct {
	EnterMs         int     `yaml:"enter_ms"`
	HoverY          float64 `yaml:"hover_y"`
	ShotSpeed       float64 `yaml:"shot_speed"`
	CapNormal       int     `yaml:"cap_normal"`
	CapDense        int     `yaml:"cap_dense"`
	TelegraphMs     int     `yaml:"telegraph_ms"`
	ProjectileSize  float64 `yaml:"projectile_size"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	RollerEnsureMs  int     `yaml:"roller_ensure_ms"`
	LaneShotSpacing int     `yaml:"lane_shot_spacing_ms"`
}

type PlayerSpec struct {
	MoveSpeed float64 `yaml:"move_speed"`
	MaxHealth int     `yaml:"max_health"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
}

// Wave2Spec is the ordered step queue for wave 2. Valid steps: spike,
// roller, weaver, mini_shower.
type Wave2Spec struct {
	Steps []string `yaml:"steps"`
}

// Wave3Spec is the absolute-offset event timeline for wave 3.
type Wave3Spec struct {
	Events []Wave3Event `yaml:"events"`
	// FillMs is the continuous weave-fill duration after the timeline.
	FillMs int `yaml:"fill_ms"`
}

type Wave3Event struct {
	AtMs   int    `yaml:"at_ms"`
	Action string `yaml:"action"` // spike, roller, shower, lane_attack
	Lane   string `yaml:"lane"`   // left or right, for lane_attack
}

// LoadSpec parses one embedded YAML file into T.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Defaults returns the built-in tuning used when a field is absent from the
// YAML. The spike warn time and gravity here are load-bearing: wave 1 at
// difficulty 1.0 telegraphs for exactly 800ms and falls at the unscaled base
// gravity.
func Defaults() TuningSpec {
	return TuningSpec{
		Spike: SpikeSpec{
			WarnMs:       800,
			ShowerWarnMs: 250,
			Gravity:      1800,
			Width:        36,
			Height:       48,
			SpawnY:       80,
		},
		Roller: RollerSpec{
			Speed:  320,
			Radius: 26,
		},
		Weaver: WeaverSpec{
			FallSpeed: 160,
			Amplitude: 180,
			Freq:      2.4,
			Width:     30,
		},
		Boss: BossSpec{
			EnterMs:         1200,
			HoverY:          140,
			ShotSpeed:       420,
			CapNormal:       10,
			CapDense:        5,
			TelegraphMs:     120,
			ProjectileSize:  16,
			Width:           96,
			Height:          72,
			RollerEnsureMs:  1000,
			LaneShotSpacing: 1000,
		},
		Player: PlayerSpec{
			MoveSpeed: 380,
			MaxHealth: 3,
			Width:     32,
			Height:    48,
		},
	}
}

// Merge overlays non-zero fields of spec onto the defaults.
func Merge(spec TuningSpec) TuningSpec {
	out := Defaults()
	mergeSpike(&out.Spike, spec.Spike)
	mergeRoller(&out.Roller, spec.Roller)
	mergeWeaver(&out.Weaver, spec.Weaver)
	mergeBoss(&out.Boss, spec.Boss)
	mergePlayer(&out.Player, spec.Player)
	return out
}

func mergeSpike(dst *SpikeSpec, src SpikeSpec) {
	if src.WarnMs != 0 {
		dst.WarnMs = src.WarnMs
	}
	if src.ShowerWarnMs != 0 {
		dst.ShowerWarnMs = src.ShowerWarnMs
	}
	if src.Gravity != 0 {
		dst.Gravity = src.Gravity
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.SpawnY != 0 {
		dst.SpawnY = src.SpawnY
	}
}

func mergeRoller(dst *RollerSpec, src RollerSpec) {
	if src.Speed != 0 {
		dst.Speed = src.Speed
	}
	if src.Radius != 0 {
		dst.Radius = src.Radius
	}
}

func mergeWeaver(dst *WeaverSpec, src WeaverSpec) {
	if src.FallSpeed != 0 {
		dst.FallSpeed = src.FallSpeed
	}
	if src.Amplitude != 0 {
		dst.Amplitude = src.Amplitude
	}
	if src.Freq != 0 {
		dst.Freq = src.Freq
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
}

func mergeBoss(dst *BossSpec, src BossSpec) {
	if src.EnterMs != 0 {
		dst.EnterMs = src.EnterMs
	}
	if src.HoverY != 0 {
		dst.HoverY = src.HoverY
	}
	if src.ShotSpeed != 0 {
		dst.ShotSpeed = src.ShotSpeed
	}
	if src.CapNormal != 0 {
		dst.CapNormal = src.CapNormal
	}
	if src.CapDense != 0 {
		dst.CapDense = src.CapDense
	}
	if src.TelegraphMs != 0 {
		dst.TelegraphMs = src.TelegraphMs
	}
	if src.ProjectileSize != 0 {
		dst.ProjectileSize = src.ProjectileSize
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.RollerEnsureMs != 0 {
		dst.RollerEnsureMs = src.RollerEnsureMs
	}
	if src.LaneShotSpacing != 0 {
		dst.LaneShotSpacing = src.LaneShotSpacing
	}
}

func mergePlayer(dst *PlayerSpec, src PlayerSpec) {
	if src.MoveSpeed != 0 {
		dst.MoveSpeed = src.MoveSpeed
	}
	if src.MaxHealth != 0 {
		dst.MaxHealth = src.MaxHealth
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
}

// LoadTuning loads tuning.yaml merged over the defaults. A missing or broken
// file degrades to pure defaults.
func LoadTuning() TuningSpec {
	spec, err := LoadSpec[TuningSpec]("tuning.yaml")
	if err != nil {
		return Defaults()
	}
	return Merge(spec)
}

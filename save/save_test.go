package save

import "testing"

func TestDegradedManagerDefaults(t *testing.T) {
	m := NewManager(nil)

	if m.TutorialCompleted() {
		t.Fatalf("fresh state claims tutorial completed")
	}
	if m.RestartWave() != 1 {
		t.Fatalf("fresh restart wave = %d, want 1", m.RestartWave())
	}
	if m.CompletionCount() != 0 {
		t.Fatalf("fresh completion count = %d, want 0", m.CompletionCount())
	}
}

func TestSetRestartWaveClamps(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"below_range", 0, 1},
		{"in_range", 2, 2},
		{"top", 3, 3},
		{"above_range", 7, 3},
		{"negative", -4, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(nil)
			m.SetRestartWave(tc.in)
			if m.RestartWave() != tc.want {
				t.Fatalf("RestartWave() = %d, want %d", m.RestartWave(), tc.want)
			}
		})
	}
}

func TestMarkTutorialCompletedSticks(t *testing.T) {
	m := NewManager(nil)
	m.MarkTutorialCompleted()
	m.MarkTutorialCompleted()
	if !m.TutorialCompleted() {
		t.Fatalf("tutorial completion did not stick")
	}
}

func TestRecordCompletionResetsRestartWave(t *testing.T) {
	m := NewManager(nil)
	m.SetRestartWave(3)

	if got := m.RecordCompletion(); got != 1 {
		t.Fatalf("first completion returned %d, want 1", got)
	}
	if m.RestartWave() != 1 {
		t.Fatalf("restart wave = %d after completion, want 1", m.RestartWave())
	}
	if got := m.RecordCompletion(); got != 2 {
		t.Fatalf("second completion returned %d, want 2", got)
	}
}

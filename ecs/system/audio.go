package system

import (
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

// AudioSystem consumes SoundRequest entities and plays the matching player.
// Requests for sounds with no registered player are dropped quietly, so the
// game runs fine with no audio assets at all.
type AudioSystem struct {
	players map[string]*audio.Player
}

func NewAudioSystem(players map[string]*audio.Player) *AudioSystem {
	return &AudioSystem{players: players}
}

func (a *AudioSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.SoundRequestComponent.Kind(), func(e ecs.Entity, req *component.SoundRequest) {
		if player, ok := a.players[req.Name]; ok && player != nil {
			if !player.IsPlaying() {
				player.Rewind()
				player.Play()
			}
		}
		ecs.DestroyEntity(w, e)
	})
}

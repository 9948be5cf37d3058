package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	startWave := flag.Int("wave", 0, "start at wave 1-3 (0 = persisted restart wave)")
	debug := flag.Bool("debug", false, "enable the debug overlay")
	prefabDir := flag.String("prefabs", "", "watch an on-disk prefab directory for hot reload")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := ebiten.Monitor().Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("spikefall")

	game := NewGame(*seed, *startWave, *debug)
	if *prefabDir != "" {
		game.WatchPrefabs(*prefabDir)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/arcadecar/logging"
)

// keyLookup resolves key names from a controls.KeyMap to ebiten keys.
type keyLookup struct {
	keys map[string]ebiten.Key
}

func newKeyLookup() *keyLookup {
	return &keyLookup{keys: make(map[string]ebiten.Key)}
}

func (l *keyLookup) isDown(name string) bool {
	k, ok := l.keys[name]
	if !ok {
		if err := k.UnmarshalText([]byte(name)); err != nil {
			log := logging.For("input")
			log.Warn().Err(err).Str("key", name).Msg("unknown key")
			k = -1
		}
		l.keys[name] = k
	}
	return k >= 0 && ebiten.IsKeyPressed(k)
}

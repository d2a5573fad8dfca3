package controls

import (
	"fmt"
	"sort"
	"strings"
)

// KeyMap binds key names to actions. Several keys may share an action.
type KeyMap map[string]Action

// DefaultKeyMap is WASD plus the arrow keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"W":          ActionForward,
		"ArrowUp":    ActionForward,
		"S":          ActionBackward,
		"ArrowDown":  ActionBackward,
		"A":          ActionLeft,
		"ArrowLeft":  ActionLeft,
		"D":          ActionRight,
		"ArrowRight": ActionRight,
	}
}

// ParseKeyMap builds a KeyMap from configured key-to-action names. An empty
// binding set returns nil so keyboards fall back to DefaultKeyMap.
func ParseKeyMap(bindings map[string]string) (KeyMap, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	keys := make(KeyMap, len(bindings))
	for key, name := range bindings {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("controls: empty key bound to %q", name)
		}
		action, err := ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("controls: key %s: %w", key, err)
		}
		keys[key] = action
	}
	return keys, nil
}

// Keys returns the bound key names in a stable order.
func (m KeyMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keyboard feeds a Controller from key-down/key-up events. An action stays
// asserted while any of its keys is held.
type Keyboard struct {
	keys KeyMap
	held map[string]bool
	ctrl *Controller
}

func NewKeyboard(keys KeyMap, ctrl *Controller) *Keyboard {
	if keys == nil {
		keys = DefaultKeyMap()
	}
	if ctrl == nil {
		ctrl = &Controller{}
	}
	return &Keyboard{
		keys: keys,
		held: make(map[string]bool),
		ctrl: ctrl,
	}
}

func (k *Keyboard) Controller() *Controller {
	return k.ctrl
}

// KeyDown handles a key-down event. It reports whether an action was newly
// asserted.
func (k *Keyboard) KeyDown(key string) bool {
	a, ok := k.keys[key]
	if !ok || k.held[key] {
		return false
	}
	k.held[key] = true
	return k.ctrl.Press(a)
}

// KeyUp handles a key-up event. It reports whether an action was released.
func (k *Keyboard) KeyUp(key string) bool {
	a, ok := k.keys[key]
	if !ok || !k.held[key] {
		return false
	}
	delete(k.held, key)
	for other, held := range k.held {
		if held && k.keys[other] == a {
			return false
		}
	}
	return k.ctrl.Release(a)
}

// Poll turns level-triggered key state into KeyDown/KeyUp edges.
func (k *Keyboard) Poll(isDown func(key string) bool) {
	if isDown == nil {
		return
	}
	for _, key := range k.keys.Keys() {
		if isDown(key) {
			k.KeyDown(key)
		} else {
			k.KeyUp(key)
		}
	}
}

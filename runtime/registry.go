package runtime

import (
	"fmt"
	"slices"
)

type screenEntry struct {
	key    ScreenKey
	screen Screen
}

// registry owns every screen. A screen lives in exactly one of the map,
// the active slot or the previous slot; activation moves screens between
// them and never copies.
type registry struct {
	screens  map[ScreenKey]Screen
	active   *screenEntry
	previous *screenEntry
}

func newRegistry() *registry {
	return &registry{screens: make(map[ScreenKey]Screen)}
}

// register stores screen under key and reports whether it replaced an
// earlier registration.
func (r *registry) register(key ScreenKey, screen Screen) bool {
	for _, slot := range []*screenEntry{r.active, r.previous} {
		if slot != nil && slot.key == key {
			slot.screen = screen
			return true
		}
	}
	_, replaced := r.screens[key]
	r.screens[key] = screen
	return replaced
}

// activate makes key the active screen. The old active screen moves to the
// previous slot and the old previous screen returns to the map. Activating
// the previous screen swaps the two slots. The active screen is not in the
// map, so activating it again fails like any other missing key. On error
// nothing moves.
func (r *registry) activate(key ScreenKey) error {
	if r.active != nil && r.active.key == key {
		return &MissingScreenError{Key: key}
	}
	if r.previous != nil && r.previous.key == key {
		r.active, r.previous = r.previous, r.active
		return nil
	}
	screen, ok := r.screens[key]
	if !ok {
		return &MissingScreenError{Key: key}
	}
	delete(r.screens, key)

	replaced := r.previous
	r.previous = r.active
	r.active = &screenEntry{key: key, screen: screen}

	if replaced != nil {
		if _, exists := r.screens[replaced.key]; exists {
			panic(fmt.Sprintf("runtime: screen %q is registered twice", replaced.key))
		}
		r.screens[replaced.key] = replaced.screen
	}
	return nil
}

// activeScreen returns the active screen, or nil before the first activation.
func (r *registry) activeScreen() Screen {
	if r.active == nil {
		return nil
	}
	return r.active.screen
}

// stored returns the keys held in the map, sorted.
func (r *registry) stored() []ScreenKey {
	keys := make([]ScreenKey, 0, len(r.screens))
	for key := range r.screens {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// broadcast delivers msg to every screen in the map, in key order.
// Screens in the active and previous slots are not included.
func (r *registry) broadcast(msg Message) {
	for _, key := range r.stored() {
		_ = r.screens[key].Update(msg)
	}
}

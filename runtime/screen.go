package runtime

import "reflect"

// Screen is one unit of application state. Only the active screen receives
// input and renders; the runtime calls both methods from its own goroutine.
type Screen interface {
	// Render draws the screen into the frame buffer.
	Render(buf *Buffer)
	// Update handles a message and optionally returns a command.
	Update(msg Message) Command
}

// ScreenKey identifies a kind of screen, for registration and activation.
type ScreenKey string

// KeyOf derives a key from the dynamic type of screen, so that each screen
// type can be registered once without naming it.
func KeyOf(screen Screen) ScreenKey {
	if screen == nil {
		return ""
	}
	return keyOfType(reflect.TypeOf(screen))
}

// KeyFor is KeyOf for a screen type known at compile time. S must be a
// concrete type; pointer and value forms share a key.
func KeyFor[S Screen]() ScreenKey {
	return keyOfType(reflect.TypeFor[S]())
}

func keyOfType(t reflect.Type) ScreenKey {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return ScreenKey(t.String())
	}
	return ScreenKey(t.PkgPath() + "." + t.Name())
}

package runtime

// Command represents an effect a screen asks the runtime to perform.
// A nil Command means there is nothing to do.
type Command interface {
	Command()
}

// Batch runs its commands in order, stopping at the first failure.
// Effects of commands that already ran are not undone.
type Batch []Command

func (Batch) Command() {}

// BatchOf builds a Batch from its arguments, skipping nil commands.
func BatchOf(cmds ...Command) Batch {
	batch := make(Batch, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd != nil {
			batch = append(batch, cmd)
		}
	}
	return batch
}

// SwitchScreen makes the screen registered under Key the active one.
type SwitchScreen struct {
	Key ScreenKey
}

func (SwitchScreen) Command() {}

// SwitchTo returns a SwitchScreen command for the screen type S, as
// registered by RegisterScreen.
func SwitchTo[S Screen]() SwitchScreen {
	return SwitchScreen{Key: KeyFor[S]()}
}

// EnableRawMode puts the terminal into raw input mode.
type EnableRawMode struct{}

func (EnableRawMode) Command() {}

// DisableRawMode returns the terminal to cooked input mode.
type DisableRawMode struct{}

func (DisableRawMode) Command() {}

// Quit signals the application should exit after the current frame.
type Quit struct{}

func (Quit) Command() {}

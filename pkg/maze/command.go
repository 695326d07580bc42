package maze

// Command is one step consumed by the motion engine: either a Move in some
// heading or the final Stop.
type Command struct {
	stop    bool
	heading Heading
}

// Move returns a command that drives in heading h until the next
// intersection (or, for Left and Right, until the turn completes).
func Move(h Heading) Command {
	return Command{heading: h}
}

// Stop returns the terminal command.
func Stop() Command {
	return Command{stop: true}
}

// IsStop reports whether c is the terminal Stop command.
func (c Command) IsStop() bool {
	return c.stop
}

// Heading returns the heading of a Move. ok is false for Stop.
func (c Command) Heading() (h Heading, ok bool) {
	if c.stop {
		return 0, false
	}
	return c.heading, true
}

func (c Command) String() string {
	if c.stop {
		return "Stop"
	}
	return "Move(" + c.heading.String() + ")"
}

package runtime

import "github.com/aretw0/turtle/pkg/domain"

// snapshotTiming says whether a command captures the turtle before or after
// the state change its operation performs.
type snapshotTiming int

const (
	// beforeMutation: the command describes a motion starting from the
	// captured pose; the renderer derives the end pose itself.
	beforeMutation snapshotTiming = iota
	// afterMutation: the command announces the state the turtle is now in.
	afterMutation
)

var snapshotTimings = map[domain.CommandType]snapshotTiming{
	domain.CommandLine:          beforeMutation,
	domain.CommandLeft:          beforeMutation,
	domain.CommandRight:         beforeMutation,
	domain.CommandCircle:        beforeMutation,
	domain.CommandSpiralCircle:  beforeMutation,
	domain.CommandSpiralForward: beforeMutation,
	domain.CommandReset:         afterMutation,
	domain.CommandBeginFill:     afterMutation,
	domain.CommandEndFill:       afterMutation,
	domain.CommandUpdateTurtle:  afterMutation,
	domain.CommandWrite:         afterMutation,
	domain.CommandDot:           afterMutation,
}

func timingOf(t domain.CommandType) snapshotTiming {
	if timing, ok := snapshotTimings[t]; ok {
		return timing
	}
	return afterMutation
}

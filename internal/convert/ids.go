package convert

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// IDGenerator synthesizes ids for tool calls that were recorded without one.
// message and call are the positions of the call in the transcript.
type IDGenerator interface {
	NewCallID(message, call int) string
}

type ulidGenerator struct{}

// ULIDGenerator returns call ids of the form call_<ULID>. ulid.Make is
// monotonic within a process, so ids stay unique within the same millisecond.
func ULIDGenerator() IDGenerator {
	return ulidGenerator{}
}

func (ulidGenerator) NewCallID(int, int) string {
	return "call_" + ulid.Make().String()
}

// SequenceGenerator numbers synthesized ids by position, which makes output
// reproducible across runs.
type SequenceGenerator struct {
	Prefix string
}

func (g SequenceGenerator) NewCallID(message, call int) string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "call"
	}
	return fmt.Sprintf("%s_%d_%d", prefix, message, call)
}

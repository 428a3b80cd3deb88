package netcfg

import (
	"github.com/kballard/go-shellquote"
)

// Invocation is one external command, held as an argv vector so no shell
// interpretation happens between building and running it. BestEffort marks
// steps whose failure is tolerated, such as deleting a qdisc that was
// never installed.
type Invocation struct {
	Argv       []string
	BestEffort bool
}

// String renders the command the way a shell would accept it.
func (inv Invocation) String() string {
	return shellquote.Join(inv.Argv...)
}

// Sequence is an ordered list of invocations serving one concern: shaping
// one interface, or configuring one MPTCP role. A failing strict step
// aborts the rest of its sequence; separate sequences are independent.
type Sequence struct {
	Label string
	Steps []Invocation
}

// TotalSteps counts the invocations across seqs.
func TotalSteps(seqs []Sequence) int {
	n := 0
	for _, s := range seqs {
		n += len(s.Steps)
	}
	return n
}

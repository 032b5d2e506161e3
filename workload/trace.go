// Package workload generates the synthetic access traces that drive the
// cache hierarchy simulation.
package workload

import "fmt"

// Op is the operation of one access.
type Op int

// The operations an access can perform.
const (
	Read Op = iota
	Write
)

func (o Op) String() string {
	switch o {
	case Read:
		return "R"
	case Write:
		return "W"
	}

	return fmt.Sprintf("Op(%d)", int(o))
}

// An Access is one entry of a trace. The ID is the strictly increasing
// sequence number of the access and doubles as the logical tick used for
// recency stamps and for the lookahead index.
type Access struct {
	ID      int
	Op      Op
	Address uint64
}

// A Trace is a finite ordered sequence of accesses, fully materialized
// before simulation starts.
type Trace []Access

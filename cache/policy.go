package cache

import "fmt"

// Policy is a replacement policy of a cache level.
type Policy int

// The replacement policies that cache levels support.
const (
	LRU Policy = iota
	FIFO
	OPT
)

func (p Policy) String() string {
	switch p {
	case LRU:
		return "LRU"
	case FIFO:
		return "FIFO"
	case OPT:
		return "OPT"
	}

	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts a policy name into a Policy. Unrecognized names are
// reported as an error rather than falling through to a default policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "LRU":
		return LRU, nil
	case "FIFO":
		return FIFO, nil
	case "OPT":
		return OPT, nil
	}

	return 0, fmt.Errorf("unrecognized replacement policy %q", name)
}

// MarshalJSON serializes the policy by name so that configurations recorded
// for provenance stay readable.
func (p Policy) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses a policy name.
func (p *Policy) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("policy must be a JSON string, got %s", data)
	}

	parsed, err := ParsePolicy(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

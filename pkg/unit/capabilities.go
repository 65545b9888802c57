package unit

import (
	"fmt"
	"strings"
)

// Capabilities is the set of things a unit can do.
type Capabilities uint32

const (
	CapPollable Capabilities = 1 << iota
	CapBinaryPoll
	CapMultiLevelPoll
	CapAssociation
	CapConfiguration
	CapLevelRamp
)

var capabilityNames = []struct {
	flag Capabilities
	name string
}{
	{CapPollable, "pollable"},
	{CapBinaryPoll, "binary_poll"},
	{CapMultiLevelPoll, "multilevel_poll"},
	{CapAssociation, "association"},
	{CapConfiguration, "configuration"},
	{CapLevelRamp, "level_ramp"},
}

// Has reports whether every bit of flag is set.
func (c Capabilities) Has(flag Capabilities) bool {
	return c&flag == flag
}

// Names returns the names of the set flags in declaration order.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(capabilityNames))
	for _, n := range capabilityNames {
		if c.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	return strings.Join(c.Names(), "|")
}

// Status is the health of a unit. Exactly one value holds at a time.
type Status uint8

const (
	StatusReady Status = iota
	StatusError
	StatusFailed
	StatusMissing
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusFailed:
		return "failed"
	case StatusMissing:
		return "missing"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Status) valid() bool {
	return s <= StatusMissing
}

// Match is the result of comparing a wire device descriptor to a unit.
type Match int

const (
	NoMatch Match = iota
	GenericMatch
	ExactMatch
)

func (m Match) String() string {
	switch m {
	case GenericMatch:
		return "generic"
	case ExactMatch:
		return "exact"
	default:
		return "none"
	}
}

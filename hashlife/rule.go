package hashlife

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRule     = errors.New("invalid rule")
	ErrUnsupportedRule = errors.New("unsupported rule")
)

// Rule is an outer-totalistic two-state rule on the Moore neighbourhood.
// Bit n of Birth (Survival) is set when a dead (live) cell with n live
// neighbours is alive in the next generation.
type Rule struct {
	Birth    uint16
	Survival uint16
}

// Conway is B3/S23
var Conway = Rule{Birth: 1 << 3, Survival: 1<<2 | 1<<3}

// Next returns the next state of a cell with the given number of live neighbours
func (r Rule) Next(alive bool, neighbours int) bool {
	if alive {
		return r.Survival&(1<<neighbours) != 0
	}
	return r.Birth&(1<<neighbours) != 0
}

func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteByte('B')
	for n := 0; n <= 8; n++ {
		if r.Birth&(1<<n) != 0 {
			sb.WriteByte(byte('0' + n))
		}
	}
	sb.WriteString("/S")
	for n := 0; n <= 8; n++ {
		if r.Survival&(1<<n) != 0 {
			sb.WriteByte(byte('0' + n))
		}
	}
	return sb.String()
}

// ParseRule reads a rule in B/S notation ("B3/S23", case-insensitive, either
// order) or in the legacy S/B notation ("23/3").
//
// Rules that give birth with fewer than three live neighbours are rejected
// with ErrUnsupportedRule: patterns under them can spread at the speed of
// light indefinitely, which no amount of padding before a step can contain.
func ParseRule(s string) (Rule, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "/")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q: expected two parts separated by '/'", ErrInvalidRule, s)
	}

	var rule Rule
	var err error
	switch {
	case strings.HasPrefix(parts[0], "B") && strings.HasPrefix(parts[1], "S"):
		rule.Birth, err = parseCounts(parts[0][1:])
		if err == nil {
			rule.Survival, err = parseCounts(parts[1][1:])
		}
	case strings.HasPrefix(parts[0], "S") && strings.HasPrefix(parts[1], "B"):
		rule.Survival, err = parseCounts(parts[0][1:])
		if err == nil {
			rule.Birth, err = parseCounts(parts[1][1:])
		}
	default:
		rule.Survival, err = parseCounts(parts[0])
		if err == nil {
			rule.Birth, err = parseCounts(parts[1])
		}
	}
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
	}

	if rule.Birth&0b111 != 0 {
		return Rule{}, fmt.Errorf("%w: %s gives birth with fewer than 3 neighbours", ErrUnsupportedRule, rule)
	}
	return rule, nil
}

// Parse a run of neighbour counts into a bitmask
func parseCounts(digits string) (uint16, error) {
	var mask uint16
	for _, char := range digits {
		if char < '0' || char > '8' {
			return 0, fmt.Errorf("bad neighbour count %q", char)
		}
		mask |= 1 << (char - '0')
	}
	return mask, nil
}

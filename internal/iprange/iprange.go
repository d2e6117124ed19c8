// Package iprange provides the IP address range value used by compiled
// filtering rules. A Range covers a single address, a CIDR prefix or an
// explicit from-to span, for either address family.
package iprange

import (
	"fmt"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// Range is an inclusive span of IP addresses of one family.
type Range struct {
	r netipx.IPRange
}

// FromAddr returns the single-address range covering a.
func FromAddr(a netip.Addr) Range {
	return Range{r: netipx.IPRangeFrom(a, a)}
}

// Parse parses an address, CIDR prefix or "from-to" span of either
// address family.
func Parse(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		from, err := netip.ParseAddr(strings.TrimSpace(lo))
		if err != nil {
			return Range{}, fmt.Errorf("iprange: invalid range start %q: %w", lo, err)
		}
		to, err := netip.ParseAddr(strings.TrimSpace(hi))
		if err != nil {
			return Range{}, fmt.Errorf("iprange: invalid range end %q: %w", hi, err)
		}
		r := netipx.IPRangeFrom(from, to)
		if !r.IsValid() {
			return Range{}, fmt.Errorf("iprange: invalid range %q", s)
		}
		return Range{r: r}, nil
	}
	if strings.ContainsRune(s, '/') {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return Range{}, fmt.Errorf("iprange: invalid prefix %q: %w", s, err)
		}
		return Range{r: netipx.RangeOfPrefix(p.Masked())}, nil
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return Range{}, fmt.Errorf("iprange: invalid address %q: %w", s, err)
	}
	return FromAddr(a), nil
}

// ParseV4 parses s and requires an IPv4 value.
func ParseV4(s string) (Range, error) {
	r, err := Parse(s)
	if err != nil {
		return Range{}, err
	}
	if !r.r.From().Is4() {
		return Range{}, fmt.Errorf("iprange: %q is not IPv4", s)
	}
	return r, nil
}

// ParseV6 parses s and requires an IPv6 value.
func ParseV6(s string) (Range, error) {
	r, err := Parse(s)
	if err != nil {
		return Range{}, err
	}
	if !r.r.From().Is6() || r.r.From().Is4In6() {
		return Range{}, fmt.Errorf("iprange: %q is not IPv6", s)
	}
	return r, nil
}

// From returns the first address of the range.
func (r Range) From() netip.Addr { return r.r.From() }

// To returns the last address of the range.
func (r Range) To() netip.Addr { return r.r.To() }

// IsValid reports whether the range holds addresses.
func (r Range) IsValid() bool { return r.r.IsValid() }

// IsV4 reports whether the range holds IPv4 addresses.
func (r Range) IsV4() bool { return r.r.From().Is4() }

// IsV6 reports whether the range holds IPv6 addresses, excluding
// 4-in-6 mapped forms.
func (r Range) IsV6() bool { return r.r.From().Is6() && !r.r.From().Is4In6() }

// IsSingle reports whether the range covers exactly one address.
func (r Range) IsSingle() bool { return r.r.From() == r.r.To() }

// ContainsAddr reports whether a lies inside the range.
func (r Range) ContainsAddr(a netip.Addr) bool { return r.r.Contains(a) }

// Contains reports whether other lies entirely inside the range.
func (r Range) Contains(other Range) bool {
	return r.r.Contains(other.r.From()) && r.r.Contains(other.r.To())
}

// Overlaps reports whether the ranges share at least one address.
func (r Range) Overlaps(other Range) bool { return r.r.Overlaps(other.r) }

// Equal reports whether both ranges cover exactly the same span.
func (r Range) Equal(other Range) bool {
	return r.r.From() == other.r.From() && r.r.To() == other.r.To()
}

// Compare orders ranges by first address, then by last address.
func (r Range) Compare(other Range) int {
	if c := r.r.From().Compare(other.r.From()); c != 0 {
		return c
	}
	return r.r.To().Compare(other.r.To())
}

func (r Range) String() string {
	if !r.r.IsValid() {
		return "invalid"
	}
	if r.IsSingle() {
		return r.r.From().String()
	}
	if prefixes := r.r.Prefixes(); len(prefixes) == 1 {
		return prefixes[0].String()
	}
	return r.r.From().String() + "-" + r.r.To().String()
}

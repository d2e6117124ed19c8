package iprange

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForms(t *testing.T) {
	t.Parallel()

	single, err := Parse("192.168.1.1")
	require.NoError(t, err)
	assert.True(t, single.IsSingle())
	assert.Equal(t, "192.168.1.1", single.String())

	cidr, err := Parse("192.0.2.0/24")
	require.NoError(t, err)
	assert.False(t, cidr.IsSingle())
	assert.Equal(t, "192.0.2.0", cidr.From().String())
	assert.Equal(t, "192.0.2.255", cidr.To().String())
	assert.Equal(t, "192.0.2.0/24", cidr.String())

	span, err := Parse("10.0.0.1-10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", span.From().String())
	assert.Equal(t, "10.0.0.9", span.To().String())

	v6, err := Parse("2001:db8::/64")
	require.NoError(t, err)
	assert.True(t, v6.ContainsAddr(netip.MustParseAddr("2001:db8::beef")))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "not.an.ip", "300.1.2.3", "10.0.0.9-10.0.0.1", "192.0.2.0/99"} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseV4RejectsV6(t *testing.T) {
	t.Parallel()

	_, err := ParseV4("2001:db8::1")
	assert.Error(t, err)

	_, err = ParseV4("192.168.1.0/24")
	assert.NoError(t, err)
}

func TestParseV6RejectsV4(t *testing.T) {
	t.Parallel()

	_, err := ParseV6("192.168.1.1")
	assert.Error(t, err)

	_, err = ParseV6("::ffff:192.168.1.1")
	assert.Error(t, err, "IPv4-mapped addresses are not IPv6 literals")

	_, err = ParseV6("2001:db8::1")
	assert.NoError(t, err)
}

func TestContainsOverlapsEqual(t *testing.T) {
	t.Parallel()

	net, err := Parse("192.0.2.0/24")
	require.NoError(t, err)
	addrIn, err := Parse("192.0.2.57")
	require.NoError(t, err)
	addrOut, err := Parse("192.0.3.1")
	require.NoError(t, err)

	assert.True(t, net.Contains(addrIn))
	assert.False(t, net.Contains(addrOut))
	assert.True(t, net.Overlaps(addrIn))
	assert.False(t, net.Overlaps(addrOut))
	assert.True(t, net.Equal(net))
	assert.False(t, net.Equal(addrIn))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	low, _ := Parse("10.0.0.1")
	high, _ := Parse("10.0.0.2")
	assert.Negative(t, low.Compare(high))
	assert.Positive(t, high.Compare(low))
	assert.Zero(t, low.Compare(low))
}

func TestFamilyPredicates(t *testing.T) {
	t.Parallel()

	v4, err := Parse("192.0.2.1")
	require.NoError(t, err)
	v6, err := Parse("2001:db8::1")
	require.NoError(t, err)
	mapped, err := Parse("::ffff:192.0.2.1")
	require.NoError(t, err)

	assert.True(t, v4.IsV4())
	assert.False(t, v4.IsV6())
	assert.True(t, v6.IsV6())
	assert.False(t, v6.IsV4())
	assert.False(t, mapped.IsV6(), "4-in-6 mapped addresses are not IPv6")
}

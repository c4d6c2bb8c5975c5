package inventory

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	ip, ipnet, err := net.ParseCIDR(s)
	require.NoError(t, err)
	ipnet.IP = ip
	return ipnet
}

func TestBuildInfoPicksFirstIPv4(t *testing.T) {
	mac, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)

	info, ok := buildInfo("eth0", mac, []*net.IPNet{
		mustCIDR(t, "fe80::1/64"),
		mustCIDR(t, "192.168.1.10/24"),
		mustCIDR(t, "10.0.0.1/8"),
	})
	require.True(t, ok)
	assert.Equal(t, "eth0", info.Name)
	assert.Equal(t, "192.168.1.10", info.IP)
	assert.Equal(t, "255.255.255.0", info.Netmask)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", info.MAC)
}

func TestBuildInfoWithoutMAC(t *testing.T) {
	info, ok := buildInfo("lo", nil, []*net.IPNet{mustCIDR(t, "127.0.0.1/8")})
	require.True(t, ok)
	assert.Equal(t, "255.0.0.0", info.Netmask)
	assert.Empty(t, info.MAC)
}

func TestBuildInfoSkipsIPv6Only(t *testing.T) {
	_, ok := buildInfo("wg0", nil, []*net.IPNet{mustCIDR(t, "fd00::1/64")})
	assert.False(t, ok)

	_, ok = buildInfo("down0", nil, nil)
	assert.False(t, ok)
}

func TestFormatMask(t *testing.T) {
	assert.Equal(t, "255.255.0.0", formatMask(net.CIDRMask(16, 32)))
	assert.Equal(t, "255.255.255.128", formatMask(net.CIDRMask(96+25, 128)))
}

func TestListInterfacesNeverNil(t *testing.T) {
	ifaces := ListInterfaces()
	assert.NotNil(t, ifaces)
	for name, info := range ifaces {
		assert.Equal(t, name, info.Name)
		assert.NotNil(t, net.ParseIP(info.IP).To4())
	}
}

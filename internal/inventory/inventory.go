// Package inventory enumerates host interfaces that carry an IPv4 address.
package inventory

import (
	"net"

	"Go2NetWatch/internal/model"

	log "github.com/sirupsen/logrus"
)

// ListInterfaces returns the IPv4-addressed interfaces keyed by name. An
// interface whose addresses cannot be read is logged and left out; the rest
// of the inventory is still returned.
func ListInterfaces() map[string]model.InterfaceInfo {
	out := make(map[string]model.InterfaceInfo)
	links, err := listLinks()
	if err != nil {
		log.Errorf("Error listing network interfaces: %v", err)
		return out
	}
	for _, l := range links {
		if l.err != nil {
			log.Warnf("Error reading addresses of interface %s: %v", l.name, l.err)
			continue
		}
		if info, ok := buildInfo(l.name, l.mac, l.addrs); ok {
			out[l.name] = info
		}
	}
	return out
}

// link is a platform-neutral view of one interface.
type link struct {
	name  string
	mac   net.HardwareAddr
	addrs []*net.IPNet
	err   error
}

// buildInfo picks the first IPv4 address of an interface.
func buildInfo(name string, mac net.HardwareAddr, addrs []*net.IPNet) (model.InterfaceInfo, bool) {
	for _, a := range addrs {
		if a == nil {
			continue
		}
		v4 := a.IP.To4()
		if v4 == nil {
			continue
		}
		info := model.InterfaceInfo{
			Name:    name,
			IP:      v4.String(),
			Netmask: formatMask(a.Mask),
		}
		if len(mac) > 0 {
			info.MAC = mac.String()
		}
		return info, true
	}
	return model.InterfaceInfo{}, false
}

func formatMask(mask net.IPMask) string {
	switch len(mask) {
	case net.IPv4len:
		return net.IP(mask).String()
	case net.IPv6len:
		// IPv4 addresses stored in 16-byte form carry their mask in the last four bytes
		return net.IP(mask[12:]).String()
	}
	return ""
}

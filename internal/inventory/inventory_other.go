//go:build !linux

package inventory

import (
	"net"
)

func listLinks() ([]link, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]link, 0, len(ifaces))
	for _, iface := range ifaces {
		entry := link{name: iface.Name, mac: iface.HardwareAddr}
		addrs, err := iface.Addrs()
		if err != nil {
			entry.err = err
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok {
				entry.addrs = append(entry.addrs, ipnet)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

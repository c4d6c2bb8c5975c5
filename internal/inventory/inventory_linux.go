//go:build linux

package inventory

import (
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

func listLinks() ([]link, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, err
	}
	out := make([]link, 0, len(links))
	for _, l := range links {
		attrs := l.Attrs()
		entry := link{name: attrs.Name, mac: attrs.HardwareAddr}
		addrs, err := netlink.AddrList(l, unix.AF_INET)
		if err != nil {
			entry.err = err
		}
		for _, a := range addrs {
			if a.IPNet != nil {
				entry.addrs = append(entry.addrs, a.IPNet)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

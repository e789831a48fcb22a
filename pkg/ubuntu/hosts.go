package ubuntu

import (
	"fmt"
	"net"

	"github.com/txn2/txeh"
)

// IsHostMapped checks whether domainName already resolves to ip. It
// also returns the addresses the name currently resolves to so stale
// mappings can be removed.
func IsHostMapped(ip net.IP, domainName string) (bool, []net.IP) {
	ips, err := net.LookupIP(domainName)
	contains := false
	if err != nil {
		ips = []net.IP{}
	} else {
		for _, existing := range ips {
			if existing.Equal(ip) {
				contains = true
				break
			}
		}
	}
	return contains, ips
}

// AddIpMapping maps domainName to ip in /etc/hosts, removing any
// previous addresses the name pointed to.
func AddIpMapping(hostConfig *txeh.HostsConfig, ip net.IP, domainName string, toRemove []net.IP) error {
	hosts, err := txeh.NewHosts(hostConfig)
	if err != nil {
		return fmt.Errorf("failed to create hosts file handler: %w", err)
	}

	if len(toRemove) > 0 {
		ips := make([]string, len(toRemove))
		for i, toRem := range toRemove {
			ips[i] = toRem.String()
		}
		hosts.RemoveAddresses(ips)
	}

	hosts.AddHost(ip.String(), domainName)
	if err = hosts.Save(); err != nil {
		return fmt.Errorf("failed to save hosts file: %w", err)
	}
	return nil
}

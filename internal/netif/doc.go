// Package netif enumerates the local IPv4 interfaces SSDP traffic is sent on.
//
// Each Refresh returns a fresh, ordered list; callers replace their previous
// list with it rather than merging. Non-IPv4 addresses are skipped silently,
// and when the host has more IPv4 interfaces than the configured maximum the
// list is truncated in scan order and a warning is logged.
//
//	enum := netif.NewEnumerator(ssdp.DefaultMaxInterfaces, logger)
//	ifaces, err := enum.Refresh()
//	if err != nil {
//	    return err // the OS interface table could not be read
//	}
package netif

// Package localip discovers the machine's primary local network address.
//
// Discovery runs a prioritized list of strategies and returns the first
// non-loopback, non-link-local address found. Strategies fail silently (debug
// log) and fall through to the next one; only total failure is an error.
package localip

import (
	"errors"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/zdunecki/dnsimple-ddns/pkg/log"
)

// ErrNoAddress is returned when no strategy yields a usable address.
var ErrNoAddress = errors.New("no usable local address found")

// probeTarget is a well-known public address used to ask the kernel which
// source address it would route outbound traffic from. No packets are sent;
// a UDP "dial" only selects a route.
const probeTarget = "8.8.8.8:53"

// primaryInterfacePrefixes are the conventional names of wired/primary
// interfaces across Linux (eth, enp/eno/ens), macOS (en) and wireless (wl).
var primaryInterfacePrefixes = []string{"eth", "en", "wl"}

// Strategy is a single way of finding a local address. Attempt returns the
// address and true on success, or false when the strategy found nothing.
type Strategy interface {
	Name() string
	Attempt() (netip.Addr, bool)
}

// Discover runs the default strategies in order and returns the first
// qualifying address.
func Discover() (netip.Addr, error) {
	return discover(DefaultStrategies())
}

// DefaultStrategies returns the built-in strategy list in priority order:
// outbound-route probe, global interface dump, named-interface scan.
func DefaultStrategies() []Strategy {
	return []Strategy{
		outboundRoute{},
		globalScan{},
		namedInterfaceScan{prefixes: primaryInterfacePrefixes},
	}
}

func discover(strategies []Strategy) (netip.Addr, error) {
	logger := log.WithComponent("localip")
	for _, s := range strategies {
		addr, ok := s.Attempt()
		if !ok {
			logger.Debug().Str("strategy", s.Name()).Msg("strategy yielded no address")
			continue
		}
		logger.Info().Str("strategy", s.Name()).Str("ip", addr.String()).Msg("found local address")
		return addr, nil
	}
	return netip.Addr{}, ErrNoAddress
}

// qualifies reports whether addr is usable as a record target: a valid,
// non-loopback, non-link-local unicast address.
func qualifies(addr netip.Addr) bool {
	return addr.IsValid() && !addr.IsLoopback() && !addr.IsLinkLocalUnicast()
}

// outboundRoute asks the kernel for the source address of the route toward a
// public IP. This answers the same question `ip route get 8.8.8.8` does,
// without needing the machine to actually be online.
type outboundRoute struct{}

func (outboundRoute) Name() string { return "outbound-route" }

func (outboundRoute) Attempt() (netip.Addr, bool) {
	conn, err := net.DialTimeout("udp", probeTarget, 2*time.Second)
	if err != nil {
		return netip.Addr{}, false
	}
	defer conn.Close()

	udpAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, false
	}
	addr := udpAddr.AddrPort().Addr().Unmap()
	if !qualifies(addr) {
		return netip.Addr{}, false
	}
	return addr, true
}

// globalScan dumps every configured address system-wide and picks the first
// globally scoped one.
type globalScan struct{}

func (globalScan) Name() string { return "global-scan" }

func (globalScan) Attempt() (netip.Addr, bool) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return netip.Addr{}, false
	}
	return firstQualifying(addrs)
}

// namedInterfaceScan restricts the interface dump to interfaces whose name
// matches a conventional primary-interface prefix.
type namedInterfaceScan struct {
	prefixes []string
}

func (namedInterfaceScan) Name() string { return "named-interface" }

func (s namedInterfaceScan) Attempt() (netip.Addr, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return netip.Addr{}, false
	}
	for _, iface := range ifaces {
		if !s.matches(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if addr, ok := firstQualifying(addrs); ok {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

func (s namedInterfaceScan) matches(name string) bool {
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// firstQualifying converts net.Addr values to netip and returns the first one
// that qualifies.
func firstQualifying(addrs []net.Addr) (netip.Addr, bool) {
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		addr, ok := netip.AddrFromSlice(ipNet.IP)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if qualifies(addr) {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

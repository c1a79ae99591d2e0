package payments

import (
	"net/netip"

	"github.com/shopfox/ShopFox/internal/pkg/env"
)

// providerNetworks are the CIDR ranges the provider documents for webhook
// egress traffic.
var providerNetworks = []string{
	"209.225.49.0/24",
	"216.33.196.0/24",
	"216.33.197.0/24",
	"63.128.82.0/24",
	"63.128.83.0/24",
	"63.128.94.0/24",
}

var providerPrefixes = mustParsePrefixes(providerNetworks)

func mustParsePrefixes(cidrs []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		prefixes = append(prefixes, netip.MustParsePrefix(cidr))
	}
	return prefixes
}

// IsAllowedOrigin reports whether a caller IP is inside the provider's
// documented webhook ranges. Loopback is accepted in dev so local webhook
// simulation works.
func IsAllowedOrigin(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	if env.IsDev() && addr.IsLoopback() {
		return true
	}

	for _, prefix := range providerPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

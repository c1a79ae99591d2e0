package payments

import (
	"testing"

	"github.com/shopfox/ShopFox/internal/pkg/env"
)

func TestIsAllowedOrigin_ProviderRanges(t *testing.T) {
	allowed := []string{
		"209.225.49.1",
		"216.33.196.254",
		"216.33.197.10",
		"63.128.82.0",
		"63.128.83.100",
		"63.128.94.42",
	}
	for _, ip := range allowed {
		if !IsAllowedOrigin(ip) {
			t.Fatalf("expected %s to be allowed", ip)
		}
	}
}

func TestIsAllowedOrigin_RejectsOutsiders(t *testing.T) {
	denied := []string{
		"8.8.8.8",
		"209.225.50.1",
		"63.128.84.1",
		"10.0.0.1",
		"not-an-ip",
		"",
	}
	for _, ip := range denied {
		if IsAllowedOrigin(ip) {
			t.Fatalf("expected %s to be rejected", ip)
		}
	}
}

func TestIsAllowedOrigin_LoopbackOnlyInDev(t *testing.T) {
	oldEnv := env.Env
	defer func() { env.Env = oldEnv }()

	env.Env = map[string]string{"APP_ENV": "prod"}
	if IsAllowedOrigin("127.0.0.1") {
		t.Fatal("expected loopback to be rejected outside dev")
	}

	env.Env = map[string]string{"APP_ENV": "dev"}
	if !IsAllowedOrigin("127.0.0.1") {
		t.Fatal("expected loopback to be allowed in dev")
	}
	if !IsAllowedOrigin("::1") {
		t.Fatal("expected IPv6 loopback to be allowed in dev")
	}
}

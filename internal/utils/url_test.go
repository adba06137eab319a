package utils

import "testing"

func TestNormalizeURL(t *testing.T) {
	normalized, domain, err := NormalizeURL("https://Example.com/path?utm_source=test&x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "example.com" {
		t.Fatalf("unexpected domain: %s", domain)
	}
	if normalized != "https://example.com/path?x=1" {
		t.Fatalf("unexpected normalized url: %s", normalized)
	}
}

func TestDomainBlocked(t *testing.T) {
	block := map[string]struct{}{"bad.com": {}}
	if !DomainBlocked("bad.com", block) || !DomainBlocked("cdn.Bad.com", block) {
		t.Fatalf("expected domain and subdomain blocked")
	}
	if DomainBlocked("notbad.com", block) || DomainBlocked("good.com", block) {
		t.Fatalf("unexpected block")
	}
}

func TestNormalizeDomain(t *testing.T) {
	host, err := NormalizeDomain("https://Bücher.de/shop")
	if err != nil || host != "xn--bcher-kva.de" {
		t.Fatalf("unexpected host %q %v", host, err)
	}
	if _, err := NormalizeDomain("  "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

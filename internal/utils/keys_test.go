package utils

import (
	"strings"
	"testing"
)

func TestGenerateAPIKeyShape(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(key, "ltzf_") {
		t.Fatalf("prefix: got %q", key[:5])
	}
	if len(key) != 64 {
		t.Fatalf("length: want=64 got=%d", len(key))
	}
	if !WellFormedKey(key) {
		t.Fatalf("generated key must be well formed")
	}
	if WellFormedKey("ltzf_short") {
		t.Fatalf("truncated key must not be well formed")
	}
	if WellFormedKey(strings.Repeat("x", 64)) {
		t.Fatalf("wrong prefix must not be well formed")
	}
}

func TestKeytagIsPrefix(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tag := KeytagOf(key)
	if len(tag) != 16 {
		t.Fatalf("keytag length: want=16 got=%d", len(tag))
	}
	if !strings.HasPrefix(key, tag) {
		t.Fatalf("keytag must be a prefix of the key")
	}
}

func TestHashAndCompare(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CompareAPIKey(hash, key) {
		t.Fatalf("key must match its own hash")
	}
	other, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate other: %v", err)
	}
	if CompareAPIKey(hash, other) {
		t.Fatalf("different key must not match")
	}
}

package tor

import (
	"errors"
	"strings"
	"testing"
)

// Valid v3 addresses generated from deterministic public keys. They do not
// correspond to any real service.
const (
	// all-zero public key
	testOnionV3Addr1 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"
	// public key 0,1,2,...,31
	testOnionV3Addr2 = "aaaqeayeaudaocajbifqydiob4ibceqtcqkrmfyydenbwha5dyp3kead.onion"
)

func TestIsValidV3Address(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"valid", testOnionV3Addr1, true},
		{"valid sequential key", testOnionV3Addr2, true},
		{"uppercase", strings.ToUpper(strings.TrimSuffix(testOnionV3Addr1, ".onion")) + ".onion", true},
		{"v2 address", "facebookcorewwwi.onion", false},
		{"too short", "abc.onion", false},
		{"too long", strings.Repeat("a", 57) + ".onion", false},
		{"missing suffix", strings.Repeat("a", 56), false},
		{"invalid characters", strings.Repeat("0", 56) + ".onion", false},
		{"bad checksum", strings.Repeat("a", 56) + ".onion", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsValidV3Address(tt.address); got != tt.want {
				t.Errorf("IsValidV3Address(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestValidateOnionHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		wantErr error
	}{
		{"regular host", "example.com", nil},
		{"valid v3", testOnionV3Addr1, nil},
		{"subdomain of v3", "www." + testOnionV3Addr2, nil},
		{"trailing dot", testOnionV3Addr1 + ".", nil},
		{"v2", "facebookcorewwwi.onion", ErrV2AddressDeprecated},
		{"garbage", "notanonion.onion", ErrInvalidOnionAddress},
		{"bare suffix", "onion", nil},
		{"only suffix label", ".onion", ErrInvalidOnionAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateOnionHost(tt.host)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestComputeV3AddressFromPublicKey(t *testing.T) {
	t.Parallel()

	t.Run("invalid key length", func(t *testing.T) {
		t.Parallel()

		if _, err := ComputeV3AddressFromPublicKey(make([]byte, 16)); !errors.Is(err, ErrInvalidOnionAddress) {
			t.Errorf("expected ErrInvalidOnionAddress, got %v", err)
		}
	})

	t.Run("known keys", func(t *testing.T) {
		t.Parallel()

		addr, err := ComputeV3AddressFromPublicKey(make([]byte, 32))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if addr != testOnionV3Addr1 {
			t.Errorf("expected %s, got %s", testOnionV3Addr1, addr)
		}

		seq := make([]byte, 32)
		for i := range seq {
			seq[i] = byte(i)
		}
		addr, err = ComputeV3AddressFromPublicKey(seq)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if addr != testOnionV3Addr2 {
			t.Errorf("expected %s, got %s", testOnionV3Addr2, addr)
		}
		if !IsValidV3Address(addr) {
			t.Error("computed address does not validate")
		}
	})
}

func TestIsOnionHost(t *testing.T) {
	t.Parallel()

	for host, want := range map[string]bool{
		"example.onion":  true,
		"EXAMPLE.ONION.": true,
		"example.com":    false,
		"onion.example":  false,
	} {
		if got := IsOnionHost(host); got != want {
			t.Errorf("IsOnionHost(%q) = %v, want %v", host, got, want)
		}
	}
}

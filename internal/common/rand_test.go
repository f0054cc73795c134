package common

import (
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf, err := GenerateRandByteArray(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != n {
		t.Fatalf("expected %d bytes, got %d", n, len(buf))
	}
	other, err := GenerateRandByteArray(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	identical := true
	for i := range buf {
		if buf[i] != other[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

package course

import (
	"strings"
	"testing"
)

func TestMakeJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := makeJoinCode()
		if err != nil {
			t.Fatalf("makeJoinCode() failed: %v", err)
		}
		if len(code) != joinCodeLen {
			t.Errorf("makeJoinCode() len = %d, want %d", len(code), joinCodeLen)
		}
		for _, r := range code {
			if !strings.ContainsRune(joinCodeAlphabet, r) {
				t.Errorf("makeJoinCode() = %q, contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from 32^8 colliding would point at a broken generator
	if len(seen) < 100 {
		t.Errorf("makeJoinCode() produced %d distinct codes out of 100", len(seen))
	}
}

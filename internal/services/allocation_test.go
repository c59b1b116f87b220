package services

import (
	"strings"
	"testing"
)

func TestGeneratePNRShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		pnr := GeneratePNR()
		if len(pnr) != 6 {
			t.Fatalf("pnr %q has length %d, want 6", pnr, len(pnr))
		}
		for _, r := range pnr {
			if !strings.ContainsRune(pnrAlphabet, r) {
				t.Fatalf("pnr %q contains %q outside the alphabet", pnr, r)
			}
		}
	}
}

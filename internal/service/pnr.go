package service

import (
	"crypto/rand"
	"strings"
)

// PNRLength is the length of a booking reference.
const PNRLength = 10

const pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Bytes at or above this value are discarded so every symbol is equally
// likely (252 = 7 * 36).
const pnrCutoff = 256 - 256%len(pnrAlphabet)

// NewPNR returns a random reference of PNRLength uppercase letters and
// digits.
func NewPNR() (string, error) {
	out := make([]byte, 0, PNRLength)
	buf := make([]byte, PNRLength*2)
	for len(out) < PNRLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= pnrCutoff {
				continue
			}
			out = append(out, pnrAlphabet[int(b)%len(pnrAlphabet)])
			if len(out) == PNRLength {
				break
			}
		}
	}
	return string(out), nil
}

// NormalizePNR trims and upper-cases user input.
func NormalizePNR(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// ValidPNR reports whether s has the shape of a reference.
func ValidPNR(s string) bool {
	if len(s) != PNRLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(pnrAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

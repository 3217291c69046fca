package model

import (
	"errors"
	"strings"
)

var ErrInvalidRUT = errors.New("invalid RUT")

// NormalizeRUT returns the canonical "12345678-K" form after checking the
// modulo 11 verifier digit. Dots, dashes and spaces in the input are ignored.
func NormalizeRUT(raw string) (string, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(raw)))

	if len(clean) < 2 {
		return "", ErrInvalidRUT
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return "", ErrInvalidRUT
		}
	}
	// zero padding is not part of the number
	body = strings.TrimLeft(body, "0")
	if body == "" || len(body) > 8 {
		return "", ErrInvalidRUT
	}
	if verifier(body) != dv {
		return "", ErrInvalidRUT
	}
	return body + "-" + string(dv), nil
}

func verifier(body string) byte {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

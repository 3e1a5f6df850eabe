package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const cardNumberLength = 16

// GenerateCardNumber generates a random 16-digit card number with a valid
// Luhn check digit.
func GenerateCardNumber() (string, error) {
	digits := make([]int, cardNumberLength)

	for i := 0; i < cardNumberLength-1; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate card number: %w", err)
		}
		digits[i] = int(n.Int64())
	}

	digits[cardNumberLength-1] = luhnCheckDigit(digits[:cardNumberLength-1])

	var b strings.Builder
	for _, d := range digits {
		fmt.Fprintf(&b, "%d", d)
	}

	return b.String(), nil
}

// ValidCardNumber reports whether the number is 16 digits and passes the
// Luhn check.
func ValidCardNumber(number string) bool {
	if len(number) != cardNumberLength {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}

		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

// MaskCardNumber masks a plaintext card number for display, keeping only
// the last four digits.
func MaskCardNumber(number string) string {
	if len(number) < 4 {
		return number
	}

	return "**** **** **** " + number[len(number)-4:]
}

func luhnCheckDigit(digits []int) int {
	sum := 0
	// The check digit position is even-indexed from the right, so every
	// digit at an odd offset from the end of the payload is doubled.
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return (10 - sum%10) % 10
}

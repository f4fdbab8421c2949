package fraud

import "strings"

// ValidLuhn runs the standard mod-10 checksum over a digit string. Any
// non-digit character fails the check.
func ValidLuhn(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}

// stripSpaces removes whitespace inside a card number before validation.
func stripSpaces(number string) string {
	return strings.Join(strings.Fields(number), "")
}

package vessel

// ValidIMO reports whether s is a well-formed IMO ship identification
// number: exactly seven digits where the last digit checks the weighted
// sum of the first six (weights 7..2, modulo 10).
func ValidIMO(s string) bool {
	if len(s) != 7 {
		return false
	}
	var sum int
	for i := 0; i < 6; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (7 - i)
	}
	check := s[6]
	if check < '0' || check > '9' {
		return false
	}
	return sum%10 == int(check-'0')
}

// ValidMMSI reports whether s is a well-formed Maritime Mobile Service
// Identity: exactly nine digits. MMSI carries no check digit.
func ValidMMSI(s string) bool {
	if len(s) != 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

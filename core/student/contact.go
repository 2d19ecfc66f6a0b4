package student

import (
	"regexp"
	"strings"
)

// Phone numbers are stored in international mobile format for Argentina:
// +54 9 [area code] [number], e.g. +54 9 11 4444-5555 stored as +5491144445555.
const DefaultCountryCode = "+54"

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	areaCodeRegex = regexp.MustCompile(`^\d{2,4}$`)
	numberRegex   = regexp.MustCompile(`^\d{6,8}$`)
	nonPhoneRegex = regexp.MustCompile(`[^\d+]`)
)

// IsValidEmail reports whether the email is well-formed. Empty is valid:
// the field is optional.
func IsValidEmail(email string) bool {
	if email == "" {
		return true
	}
	return emailRegex.MatchString(email)
}

// IsValidPhone validates Argentine phone components: area code without the
// leading 0 (2-4 digits) and number without the 15 prefix (6-8 digits,
// hyphens allowed). Both empty is valid; one empty is not.
func IsValidPhone(areaCode, number string) bool {
	if areaCode == "" && number == "" {
		return true
	}
	if areaCode == "" || number == "" {
		return false
	}
	if !areaCodeRegex.MatchString(areaCode) {
		return false
	}
	return numberRegex.MatchString(strings.ReplaceAll(number, "-", ""))
}

// FormatPhoneForStorage builds the stored international format, inserting the
// mobile "9" after the country code: ("+54", "11", "4444-5555") -> "+5491144445555".
func FormatPhoneForStorage(countryCode, areaCode, number string) string {
	if areaCode == "" || number == "" {
		return ""
	}
	clean := strings.NewReplacer("-", "", " ", "").Replace(number)
	return countryCode + "9" + areaCode + clean
}

// FormatPhoneDisplay renders a stored number for humans:
// "+5491144445555" -> "+54 9 11 4444-5555". Unrecognized formats are
// returned as-is.
func FormatPhoneDisplay(phone string) string {
	if phone == "" {
		return ""
	}

	cleaned := nonPhoneRegex.ReplaceAllString(phone, "")
	if !strings.HasPrefix(cleaned, "+549") {
		return phone
	}

	areaCode, number := splitAreaCode(cleaned[4:])
	if len(number) > 4 {
		number = number[:4] + "-" + number[4:]
	}
	return "+54 9 " + areaCode + " " + number
}

// FormatPhoneWhatsApp renders a stored number for wa.me links (no "+").
func FormatPhoneWhatsApp(phone string) string {
	return strings.TrimPrefix(phone, "+")
}

// ParsePhone splits a stored number back into its components. Unrecognized
// formats yield empty area code and number.
func ParsePhone(phone string) (countryCode, areaCode, number string) {
	countryCode = DefaultCountryCode
	if phone == "" {
		return
	}
	cleaned := nonPhoneRegex.ReplaceAllString(phone, "")
	if !strings.HasPrefix(cleaned, "+549") {
		return
	}
	areaCode, number = splitAreaCode(cleaned[4:])
	return
}

// splitAreaCode guesses the area code length: "11" (Buenos Aires) is 2
// digits; otherwise numbers of 10+ digits get a 3-digit code, shorter ones 2.
func splitAreaCode(s string) (areaCode, number string) {
	n := 2
	if !strings.HasPrefix(s, "11") && len(s) >= 10 {
		n = 3
	}
	if len(s) < n {
		return s, ""
	}
	return s[:n], s[n:]
}

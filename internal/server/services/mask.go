package services

import (
	"strings"
	"unicode/utf8"
)

// maskEmail keeps the first character and the domain: "a***@example.com".
func maskEmail(email string) string {
	if email == "" {
		return "No email"
	}
	_, size := utf8.DecodeRuneInString(email)
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:size] + "***"
	}
	return email[:size] + "***" + email[at:]
}

func emailHint(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "No email on file"
	}
	return "Email ends with " + email[at:]
}

// maskPhone keeps the last four characters; short or empty numbers yield fallback.
func maskPhone(phone, fallback string) string {
	if utf8.RuneCountInString(phone) > 4 {
		return "***" + lastFour(phone)
	}
	return fallback
}

func phoneHint(phone string) string {
	if phone == "" {
		return "No phone on file"
	}
	return "Phone ends with " + lastFour(phone)
}

func lastFour(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return s
	}
	return string(r[len(r)-4:])
}

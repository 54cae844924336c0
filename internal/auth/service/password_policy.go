package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength     = 8
	maxPasswordSimilarity = 0.7
)

// commonPasswords is a small sample of the most leaked passwords. Checked
// case-insensitively.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "11111111": {},
	"00000000": {}, "abc12345": {}, "football": {}, "baseball": {}, "welcome1": {},
	"sunshine": {}, "princess": {}, "superman": {}, "trustno1": {}, "letmein1": {},
	"passw0rd": {}, "1q2w3e4r": {}, "zaq12wsx": {}, "qwerty12": {}, "monkey123": {},
	"dragon123": {}, "master123": {}, "starwars": {}, "whatever": {}, "computer": {},
	"йцукенгш": {}, "пароль123": {}, "qwerty1234": {}, "asdfghjkl": {}, "michelle": {},
}

var nonWord = regexp.MustCompile(`\W+`)

// ValidatePassword applies the account password policy and returns every
// failed rule's message. email and username feed the similarity check.
func ValidatePassword(password, email, username string) []string {
	var msgs []string

	if utf8.RuneCountInString(password) < MinPasswordLength {
		msgs = append(msgs, "This password is too short. It must contain at least 8 characters.")
	}
	if tooSimilar(password, email) {
		msgs = append(msgs, "The password is too similar to the email address.")
	} else if tooSimilar(password, username) {
		msgs = append(msgs, "The password is too similar to the username.")
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		msgs = append(msgs, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		msgs = append(msgs, "This password is entirely numeric.")
	}

	return msgs
}

// tooSimilar compares the password against the attribute and each of its
// word parts, so "rose.gardener@example.com" also checks "rose" and "gardener".
func tooSimilar(password, attr string) bool {
	if password == "" || attr == "" {
		return false
	}
	password = strings.ToLower(password)
	attr = strings.ToLower(attr)

	parts := append(nonWord.Split(attr, -1), attr)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if similarity(password, part) >= maxPasswordSimilarity {
			return true
		}
	}
	return false
}

// similarity is the Ratcliff/Obershelp ratio 2*M/T, where M counts runes
// in recursively matched longest common blocks.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Longest common substring by dynamic programming over one row.
	bestLen, bestA, bestB := 0, 0, 0
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestLen {
					bestLen, bestA, bestB = cur[j], i-cur[j], j-cur[j]
				}
			}
		}
		prev = cur
	}
	if bestLen == 0 {
		return 0
	}

	return bestLen +
		matchingRunes(a[:bestA], b[:bestB]) +
		matchingRunes(a[bestA+bestLen:], b[bestB+bestLen:])
}

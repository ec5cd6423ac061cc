package services

import (
	"strings"
	"unicode"

	"github.com/promptshare/authsvc/domain"
)

// commonPasswords is a seed denylist; production deployments should
// extend it with a breach corpus.
var commonPasswords = map[string]struct{}{
	"password":  {},
	"123456":    {},
	"12345678":  {},
	"qwerty":    {},
	"abc123":    {},
	"password1": {},
	"admin":     {},
	"letmein":   {},
	"welcome":   {},
	"monkey":    {},
}

// PasswordPolicyImpl implements domain.PasswordPolicy with a scoring
// model: length, character classes, denylist and diversity each
// contribute to a 0-4 score; a candidate passes at score >= 2 with
// minimum length and no denylist hit.
type PasswordPolicyImpl struct{}

// NewPasswordPolicy creates the default password policy
func NewPasswordPolicy() domain.PasswordPolicy {
	return &PasswordPolicyImpl{}
}

// Check implements domain.PasswordPolicy
func (p *PasswordPolicyImpl) Check(password string) domain.PasswordStrength {
	var feedback []string
	var score float64

	switch {
	case len(password) < 8:
		feedback = append(feedback, "Password must be at least 8 characters long")
	case len(password) >= 12:
		score++
	default:
		score += 0.5
	}

	_, common := commonPasswords[strings.ToLower(password)]
	if common {
		feedback = append(feedback, "Password is too common. Please choose a more unique password.")
	} else {
		score++
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*(),.?\":{}|<>", r):
			hasSpecial = true
		}
	}

	if hasUpper {
		score += 0.5
	} else {
		feedback = append(feedback, "Consider adding uppercase letters")
	}
	if hasLower {
		score += 0.5
	} else {
		feedback = append(feedback, "Consider adding lowercase letters")
	}
	if hasDigit {
		score += 0.5
	} else {
		feedback = append(feedback, "Consider adding numbers")
	}
	if hasSpecial {
		score += 0.5
	} else {
		feedback = append(feedback, "Consider adding special characters (!@#$%^&*)")
	}

	unique := make(map[rune]struct{}, len(password))
	for _, r := range password {
		unique[r] = struct{}{}
	}
	if len(password) > 0 && float64(len(unique)) < float64(len(password))*0.5 {
		feedback = append(feedback, "Password has low character diversity")
	}

	finalScore := int(score)
	if finalScore > 4 {
		finalScore = 4
	}

	valid := finalScore >= 2 && len(password) >= 8 && !common

	if valid && len(feedback) == 0 {
		feedback = append(feedback, "Password strength: Good")
	}

	return domain.PasswordStrength{
		Valid:    valid,
		Score:    finalScore,
		Feedback: feedback,
	}
}

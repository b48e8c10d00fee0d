package parser

import (
	"regexp"
	"strings"
)

// DetectedCode is a verification code found in a message body. Temporary
// mailboxes exist mostly to receive these.
type DetectedCode struct {
	Type  string `json:"type"` // "otp", "verification", "code", "security", "token"
	Value string `json:"value"`
}

// CodeDetector finds verification codes in message text.
type CodeDetector struct {
	patterns []*codePattern
}

type codePattern struct {
	Type  string
	Regex *regexp.Regexp
}

// NewCodeDetector creates a new code detector
func NewCodeDetector() *CodeDetector {
	return &CodeDetector{
		patterns: []*codePattern{
			// OTP codes with keyword (4-8 digits)
			{
				Type:  "otp",
				Regex: regexp.MustCompile(`(?i)(?:code|otp|pin|password)[\s:\-]*(\d{4,8})\b`),
			},
			{
				Type:  "verification",
				Regex: regexp.MustCompile(`(?i)(?:verification|confirm|activation)[\s\w]*[\s:\-]*(\d{4,8})\b`),
			},
			// Standalone numeric codes on their own line
			{
				Type:  "code",
				Regex: regexp.MustCompile(`(?m)^\s*(\d{4,8})\s*$`),
			},
			// Alphanumeric codes (reset tokens and the like)
			{
				Type:  "code",
				Regex: regexp.MustCompile(`(?i)(?:code)[\s:\-]*([A-Z0-9]{4,12})\b`),
			},
			{
				Type:  "security",
				Regex: regexp.MustCompile(`(?i)(?:security|2fa|two.factor)[\s\w]*[\s:\-]*(\d{4,8})\b`),
			},
		},
	}
}

// DetectCodes finds all verification codes in text
func (d *CodeDetector) DetectCodes(text string) []DetectedCode {
	var codes []DetectedCode
	seen := make(map[string]bool)

	for _, pattern := range d.patterns {
		matches := pattern.Regex.FindAllStringSubmatch(text, -1)
		for _, match := range matches {
			if len(match) < 2 {
				continue
			}
			code := strings.TrimSpace(match[1])
			if seen[code] || len(code) < 4 {
				continue
			}
			seen[code] = true
			codes = append(codes, DetectedCode{Type: pattern.Type, Value: code})
		}
	}

	return codes
}

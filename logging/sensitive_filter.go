package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),                  // OpenAI keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),           // Bearer tokens
	regexp.MustCompile(`(\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53})`),         // bcrypt hashes
	regexp.MustCompile(`(?i)(AKIA[0-9A-Z]{16})`),                       // S3 style access keys
	regexp.MustCompile(`(?i)((?:password|secret|token|api_key|apikey)\s*[:=]\s*[^\s,;]{8,})`),
}

// Substrings of field names whose values are never logged.
var sensitiveFieldNames = []string{
	"API_KEY",
	"APIKEY",
	"SECRET",
	"TOKEN",
	"PASSWORD",
	"AUTHORIZATION",
	"ACCESS_KEY",
}

// RedactSensitiveData replaces every detected secret in value with RedactedPlaceholder.
//
//	RedactSensitiveData("key is sk-abc123def456ghi789jkl0") // "key is [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// IsSensitiveField returns true if the field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData returns true if the value matches any secret pattern.
func ContainsSensitiveData(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

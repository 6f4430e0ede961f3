package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Size limits (in bytes)
const (
	MaxJSONSize     = 256 * 1024 // request bodies
	MaxManifestSize = 64 * 1024  // single app manifest file
	MaxLengthValue  = 64         // single CSS length ("120px", "calc(100vh - 34px)")
)

// String length limits
const (
	MaxIDLength          = 128
	MaxTitleLength       = 256
	MaxNameLength        = 256
	MaxDescriptionLength = 2048
	MaxKeyLength         = 32
	MaxIconLength        = 2048
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// LengthPattern accepts plain numbers, px/%/vw/vh/em/rem lengths and calc() expressions
	LengthPattern = regexp.MustCompile(`^(-?[0-9]+(\.[0-9]+)?(px|%|vw|vh|em|rem)?|calc\([a-z0-9 .%+\-*/()]+\))$`)
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the request body limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxJSONSize)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	if err := v.ValidateSize(data); err != nil {
		return err
	}
	if !sonic.Valid(data) {
		return fmt.Errorf("invalid JSON")
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateID validates an app id or other caller-chosen identifier
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateLength validates an optional geometry value
func ValidateLength(value *string, fieldName string) error {
	if value == nil || *value == "" {
		return nil
	}
	if len(*value) > MaxLengthValue || !LengthPattern.MatchString(*value) {
		return fmt.Errorf("%s is not a valid length: %q", fieldName, *value)
	}
	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateDescription validates a description field
func ValidateDescription(description, fieldName string, required bool) error {
	return ValidateString(description, fieldName, 0, MaxDescriptionLength, required)
}

// NormalizeFragment strips the leading '#' of a location fragment.
// An empty result means "no deep link".
func NormalizeFragment(fragment string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
}

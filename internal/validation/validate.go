// Package validation provides input validation for destination
// configurations and object keys.
//
// Configuration faults are caught here, before any store call is made.
package validation

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/sinktypes"
)

// ValidateDestination validates a destination configuration before a client
// is constructed for it. Returns ErrInvalidConfiguration on any malformed
// field; messages never include credential values.
func ValidateDestination(dest sinktypes.DestinationConfig) error {
	if dest.AccessKey == "" {
		return errors.NewBucketError("validateDestination", dest.Bucket, errors.ErrInvalidConfiguration).
			WithMessage("access key cannot be empty")
	}
	if dest.SecretKey == "" {
		return errors.NewBucketError("validateDestination", dest.Bucket, errors.ErrInvalidConfiguration).
			WithMessage("secret key cannot be empty")
	}
	if dest.Region == "" {
		return errors.NewBucketError("validateDestination", dest.Bucket, errors.ErrInvalidConfiguration).
			WithMessage("region cannot be empty")
	}
	if err := ValidateBucketName(dest.Bucket); err != nil {
		return err
	}
	return nil
}

// ValidateBucketName validates that a bucket name is DNS-compliant according
// to AWS S3 rules.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucketName", errors.ErrInvalidConfiguration).
			WithMessage("bucket name cannot be empty")
	}

	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidConfiguration).
			WithMessage("bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidConfiguration).
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidConfiguration).
			WithMessage("bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidConfiguration).
			WithMessage("bucket name cannot be formatted as an IP address")
	}

	if hasAdjacentSpecialChars(bucket) {
		return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidConfiguration).
			WithMessage("bucket name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// ValidateObjectKey validates that an object key is valid according to AWS
// S3 rules. This includes preventing path traversal attacks.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	// S3 supports keys up to 1024 bytes
	if len(key) > 1024 {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(bucket string) bool {
	for i := 0; i < len(bucket)-1; i++ {
		if (bucket[i] == '.' && bucket[i+1] == '.') || (bucket[i] == '-' && bucket[i+1] == '-') {
			return true
		}
	}
	return false
}

// isIPAddress checks if a string is formatted as an IP address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}

// Package util provides small helpers shared across the server.
package util

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

var uidMatcher = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{1,30}[a-zA-Z0-9])?$`)

// GenUUID generates a new UUID string.
func GenUUID() string {
	return uuid.New().String()
}

// GenShortUUID generates a compact UUID suitable for resource names.
func GenShortUUID() string {
	return shortuuid.New()
}

// ValidateUID checks whether uid is usable as a resource identifier.
func ValidateUID(uid string) bool {
	return uidMatcher.MatchString(uid)
}

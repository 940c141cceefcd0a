package service

import (
	"time"
)

// GetExpiresAt converts a provider's expires_in seconds into an absolute time.
func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

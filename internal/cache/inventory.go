package cache

import (
	"fmt"
	"time"
)

const (
	AnalyticsKey        = "admin:analytics"
	UserStatusKeyPrefix = "user:%d:status"
)

const (
	AnalyticsTTL  = 30 * time.Second
	UserStatusTTL = 5 * time.Minute
)

// UserStatusKey caches a user's account status for the auth path.
func UserStatusKey(userID uint) string {
	return fmt.Sprintf(UserStatusKeyPrefix, userID)
}

// ModerationKeys lists the keys invalidated after any moderation or cascade change touching userIDs.
func ModerationKeys(userIDs ...uint) []string {
	keys := []string{AnalyticsKey}
	for _, id := range userIDs {
		keys = append(keys, UserStatusKey(id))
	}
	return keys
}

package cache

import "strings"

const (
	GlobalKeyPrefix = "quizhive"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// SessionKey is the cache key for one opaque session id.
func SessionKey(sessionID string) string {
	return GenerateCacheKey("auth", "session", sessionID)
}

// LeaderboardKey is the cache key for one quiz's leaderboard.
func LeaderboardKey(quizID string) string {
	return GenerateCacheKey("report", "leaderboard", quizID)
}

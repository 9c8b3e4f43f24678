package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "auth",
			objectType:  "session",
			identifier:  "01HZX",
			paramsKey:   nil,
			expectedKey: "quizhive:auth:session:01HZX",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "report",
			objectType:  "leaderboard",
			identifier:  "quiz1",
			paramsKey:   []string{},
			expectedKey: "quizhive:report:leaderboard:quiz1",
		},
		{
			name:        "with one paramsKey",
			serviceName: "report",
			objectType:  "analytics",
			identifier:  "quiz1",
			paramsKey:   []string{"avg"},
			expectedKey: "quizhive:report:analytics:quiz1:avg",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "report",
			objectType:  "user",
			identifier:  "user1",
			paramsKey:   []string{"csv", "v1"},
			expectedKey: "quizhive:report:user:user1:csv_v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if got != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %q, want %q", got, tt.expectedKey)
			}
		})
	}
}

func TestWellKnownKeys(t *testing.T) {
	if got := SessionKey("abc"); got != "quizhive:auth:session:abc" {
		t.Errorf("SessionKey() = %q", got)
	}
	if got := LeaderboardKey("quiz1"); got != "quizhive:report:leaderboard:quiz1" {
		t.Errorf("LeaderboardKey() = %q", got)
	}
}

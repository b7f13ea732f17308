package config

import "time"

// SearchConfig points at the enhanced search backend.
type SearchConfig struct {
	BaseURL string
	Timeout time.Duration
	// BackendBaseURL serves the languages and favorites fallback endpoints.
	// It defaults to BaseURL.
	BackendBaseURL string
	AvatarBaseURL  string
}

// RemoteConfig selects the auth/database collaborator.
type RemoteConfig struct {
	Provider        string
	SupabaseURL     string
	SupabaseAnonKey string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	Timeout         time.Duration
}

func loadSearch() SearchConfig {
	base := envOrDefault(envSearchBaseURL, defaultSearchBaseURL)
	return SearchConfig{
		BaseURL:        base,
		Timeout:        durationEnvOrDefault(envSearchTimeout, defaultSearchTimeout),
		BackendBaseURL: envOrDefault(envBackendBaseURL, base),
		AvatarBaseURL:  envOrDefault(envAvatarBaseURL, ""),
	}
}

func loadRemote() RemoteConfig {
	return RemoteConfig{
		Provider:        oneOf(envOrDefault(envRemoteProvider, defaultRemoteProvider), defaultRemoteProvider, RemoteFixture, RemoteSupabase, RemotePostgres),
		SupabaseURL:     envOrDefault(envSupabaseURL, ""),
		SupabaseAnonKey: envOrDefault(envSupabaseAnonKey, ""),
		DatabaseURL:     envOrDefault(envDatabaseURL, ""),
		JWTSecret:       envOrDefault(envAuthJWTSecret, ""),
		TokenTTL:        durationEnvOrDefault(envAuthTokenTTL, defaultTokenTTL),
		Timeout:         durationEnvOrDefault(envRemoteTimeout, defaultRemoteTimeout),
	}
}

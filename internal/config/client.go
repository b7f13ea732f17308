package config

import "time"

// StorageConfig selects the local persistence driver.
type StorageConfig struct {
	Driver string
	Path   string
	// MaxClients caps how many client controllers stay loaded at once.
	MaxClients int
}

// SyncConfig controls how remote writes are delivered.
type SyncConfig struct {
	Strategy      string
	MaxAttempts   int
	Backoff       time.Duration
	Background    bool
	FlushInterval time.Duration
}

// ProductConfig carries product-level switches.
type ProductConfig struct {
	DefaultScore       float64
	VerificationBypass bool
	DemoAccounts       bool
	DefaultLanguage    string
}

func loadStorage() StorageConfig {
	return StorageConfig{
		Driver:     oneOf(envOrDefault(envStorageDriver, defaultStorageDriver), defaultStorageDriver, StorageMemory, StorageFS, StorageSQLite),
		Path:       envOrDefault(envStoragePath, defaultStoragePath),
		MaxClients: intEnvOrDefault(envMaxClients, defaultMaxClients),
	}
}

func loadSync() SyncConfig {
	return SyncConfig{
		Strategy:      oneOf(envOrDefault(envSyncStrategy, defaultSyncStrategy), defaultSyncStrategy, SyncImmediate, SyncRetry, SyncOutbox),
		MaxAttempts:   intEnvOrDefault(envSyncAttempts, defaultSyncAttempts),
		Backoff:       durationEnvOrDefault(envSyncBackoff, defaultSyncBackoff),
		Background:    boolEnvOrDefault(envSyncBackground, false),
		FlushInterval: durationEnvOrDefault(envFlushInterval, defaultFlushInterval),
	}
}

func loadProduct() ProductConfig {
	score := floatEnvOrDefault(envDefaultScore, defaultPlayerScore)
	if score < 0 || score > 100 {
		score = defaultPlayerScore
	}
	return ProductConfig{
		DefaultScore:       score,
		VerificationBypass: boolEnvOrDefault(envVerificationBypass, defaultVerifyBypassing),
		DemoAccounts:       boolEnvOrDefault(envDemoAccounts, defaultDemoAccounts),
		DefaultLanguage:    envOrDefault(envDefaultLanguage, defaultLanguage),
	}
}

package config

import "time"

const (
	envPort         = "PORT"
	envLogLevel     = "LOG_LEVEL"
	envLogFormat    = "LOG_FORMAT"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envSearchBaseURL  = "SEARCH_BASE_URL"
	envSearchTimeout  = "SEARCH_TIMEOUT"
	envBackendBaseURL = "BACKEND_BASE_URL"
	envAvatarBaseURL  = "AVATAR_BASE_URL"

	envRemoteProvider  = "REMOTE_PROVIDER"
	envSupabaseURL     = "SUPABASE_URL"
	envSupabaseAnonKey = "SUPABASE_ANON_KEY"
	envDatabaseURL     = "DATABASE_URL"
	envAuthJWTSecret   = "AUTH_JWT_SECRET"
	envAuthTokenTTL    = "AUTH_TOKEN_TTL"
	envRemoteTimeout   = "REMOTE_TIMEOUT"

	envStorageDriver = "STORAGE_DRIVER"
	envStoragePath   = "STORAGE_PATH"
	envMaxClients    = "MAX_LOADED_CLIENTS"

	envSyncStrategy   = "SYNC_STRATEGY"
	envSyncAttempts   = "SYNC_MAX_ATTEMPTS"
	envSyncBackoff    = "SYNC_BACKOFF"
	envSyncBackground = "SYNC_BACKGROUND"
	envFlushInterval  = "OUTBOX_FLUSH_INTERVAL"

	envDefaultScore       = "PLAYER_DEFAULT_SCORE"
	envVerificationBypass = "VERIFICATION_BYPASS"
	envDemoAccounts       = "DEMO_ACCOUNTS_ENABLED"
	envDefaultLanguage    = "DEFAULT_LANGUAGE"

	defaultPort        = "4000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultMetricsPort = "9090"
	defaultServiceName = "scout-client"

	defaultSearchBaseURL = "http://localhost:8000"
	defaultSearchTimeout = 30 * Duration(time.Second)
	defaultRemoteTimeout = 10 * Duration(time.Second)
	defaultTokenTTL      = 24 * Duration(time.Hour)

	defaultStorageDriver = StorageFS
	defaultStoragePath   = "data/clients"
	defaultMaxClients    = 1000

	defaultSyncStrategy  = SyncImmediate
	defaultSyncAttempts  = 3
	defaultSyncBackoff   = 200 * Duration(time.Millisecond)
	defaultFlushInterval = 30 * Duration(time.Second)

	defaultPlayerScore     = 70.0
	defaultLanguage        = "en"
	defaultRemoteProvider  = RemoteFixture
	defaultDemoAccounts    = true
	defaultVerifyBypassing = false
)

// Remote providers.
const (
	RemoteFixture  = "fixture"
	RemoteSupabase = "supabase"
	RemotePostgres = "postgres"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
)

// Sync strategies.
const (
	SyncImmediate = "immediate"
	SyncRetry     = "retry"
	SyncOutbox    = "outbox"
)

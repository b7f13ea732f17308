package server

import "time"

const (
	readTimeout = 10 * time.Second
	// Chat turns wait on the search service, which may take most of its own timeout.
	writeTimeout = 45 * time.Second
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second

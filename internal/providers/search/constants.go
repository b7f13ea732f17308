package search

import "time"

const (
	defaultBaseURL     = "http://localhost:8000"
	defaultHTTPTimeout = 60 * time.Second
	searchPath         = "/enhanced_search"
	upstreamName       = "search"
)

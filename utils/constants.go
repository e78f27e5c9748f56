package utils

import (
	"time"
)

// ContextKey is the type for request-scoped values passed into business flows
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
	TimeoutKey   ContextKey = "timeout"
	CancelFunc   ContextKey = "cancel_func"
)

// Analytics window constants
const (
	// MinWindowDays is the smallest accepted analytics window
	MinWindowDays = 1

	// MaxWindowDays is the largest accepted analytics window (one year)
	MaxWindowDays = 365

	// DefaultWindowDays is used when the caller does not specify a window
	DefaultWindowDays = 30

	// SummaryPeriodDays is the period covered by one scheduled summary email
	SummaryPeriodDays = 7
)

// AdminJobTimeout bounds on-demand weekly summary runs triggered over HTTP
const AdminJobTimeout = 5 * time.Minute

// Cache constants
const (
	// AnalyticsCacheTTL bounds staleness of cached analytics summaries
	AnalyticsCacheTTL = 5 * time.Minute

	// AnalyticsCacheKeyPrefix namespaces analytics entries in Redis
	AnalyticsCacheKeyPrefix = "biotap:analytics"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

package sessiongate

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by sessiongate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Store   StoreConfig
	Backend BackendConfig
	Bridge  BridgeConfig
	Guard   GuardConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by sessiongate APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// RecordKey is the key under which the session record lives in each scope.
	RecordKey string

	// RedisPrefix namespaces keys when the persistent scope is Redis-backed.
	RedisPrefix string
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig defines a public type used by sessiongate APIs.
//
// BackendConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BackendConfig struct {
	BaseURL string

	LoginPath    string
	ValidatePath string
	LogoutPath   string

	// ProtectedBasePath is the canonical mount point of protected views,
	// supplied here rather than hardcoded per view.
	ProtectedBasePath string

	Timeout time.Duration
}

/*
====================================
BRIDGE CONFIG
====================================
*/

// BridgeConfig names the legacy mirror keys consumed by older views. This config is
// the single point that changes when a new legacy key name is discovered.
//
// BridgeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BridgeConfig struct {
	Enabled bool

	AuthTokenKey string
	UsernameKey  string
	UserEmailKey string
	IsAdminKey   string
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig defines a public type used by sessiongate APIs.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	// ValidateOnLoad re-checks the token with the backend on every guard pass.
	// When false the local record is trusted as-is.
	ValidateOnLoad bool

	// DebugLogging emits a per-step decision trace for every pass. The same
	// trace can be enabled for a single pass via [WithDebugLogging].
	DebugLogging bool
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by sessiongate APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// InspectJWT enables advisory local expiry rejection for JWT-shaped tokens.
	InspectJWT bool

	// Leeway is subtracted from the exp claim during local inspection.
	Leeway time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by sessiongate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by sessiongate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: file-era key names, the
// documented auth endpoints, validate-on-load, and audit/metrics enabled with a
// small buffer.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			RecordKey:   "sg:session",
			RedisPrefix: "sg",
		},
		Backend: BackendConfig{
			LoginPath:         "/api/auth/login",
			ValidatePath:      "/api/auth/validate",
			LogoutPath:        "/api/auth/logout",
			ProtectedBasePath: "/admin",
			Timeout:           10 * time.Second,
		},
		Bridge: BridgeConfig{
			Enabled:      true,
			AuthTokenKey: "authToken",
			UsernameKey:  "username",
			UserEmailKey: "userEmail",
			IsAdminKey:   "isAdmin",
		},
		Guard: GuardConfig{
			ValidateOnLoad: true,
			DebugLogging:   false,
		},
		Token: TokenConfig{
			InspectJWT: true,
			Leeway:     30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// all fields are value types; a shallow copy is a deep copy
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Store
	if c.Store.RecordKey == "" {
		return errors.New("Store RecordKey is required")
	}

	// Backend
	if c.Backend.Timeout <= 0 {
		return errors.New("Backend Timeout must be > 0")
	}
	for _, p := range []string{c.Backend.LoginPath, c.Backend.ValidatePath, c.Backend.LogoutPath} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Backend auth paths must start with /")
		}
	}
	if !strings.HasPrefix(c.Backend.ProtectedBasePath, "/") {
		return errors.New("Backend ProtectedBasePath must start with /")
	}

	// Bridge
	if c.Bridge.Enabled {
		if c.Bridge.AuthTokenKey == "" || c.Bridge.UsernameKey == "" ||
			c.Bridge.UserEmailKey == "" || c.Bridge.IsAdminKey == "" {
			return errors.New("Bridge key names are required when bridge is enabled")
		}
		if c.Bridge.AuthTokenKey == c.Store.RecordKey {
			return errors.New("Bridge AuthTokenKey must not collide with Store RecordKey")
		}
	}

	// Token
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}

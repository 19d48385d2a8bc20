package sessiongate

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNetwork is an exported constant or variable used by the session engine.
	ErrNetwork = errors.New("backend unreachable")
	// ErrServer is an exported constant or variable used by the session engine.
	ErrServer = errors.New("backend server error")
	// ErrTokenRejected is an exported constant or variable used by the session engine.
	ErrTokenRejected = errors.New("token rejected by backend")
	// ErrTokenExpiredLocally is an exported constant or variable used by the session engine.
	ErrTokenExpiredLocally = errors.New("token expired locally")
	// ErrNoSession is an exported constant or variable used by the session engine.
	ErrNoSession = errors.New("no stored session")
	// ErrStalePass is an exported constant or variable used by the session engine.
	ErrStalePass = errors.New("guard pass superseded")
	// ErrBackendResponseInvalid is an exported constant or variable used by the session engine.
	ErrBackendResponseInvalid = errors.New("backend response invalid")
)

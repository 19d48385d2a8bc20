package flows

// Identity is a flow-local user shape mirroring the backend's user object.
type Identity struct {
	ID       int64
	Username string
	Email    string
	IsAdmin  bool
}

// Deps groups flow dependency sets. The root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Load     LoadDeps
	Validate ValidateDeps
	Login    LoginDeps
	Guard    GuardDeps
	Logout   LogoutDeps
}

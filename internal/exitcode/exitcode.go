// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, bad item number, bad config).
	UserError = 1

	// AuthError indicates a Google auth/credentials error.
	AuthError = 2

	// RemoteError indicates a Google Tasks API/network error.
	RemoteError = 3

	// StorageError indicates the local store could not be opened or written.
	StorageError = 4
)

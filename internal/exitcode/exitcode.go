// Package exitcode lists the process exit statuses of the taskflow CLI.
package exitcode

const (
	Success = 0

	// UserError covers bad arguments, unknown tasks and invalid values.
	UserError = 1

	// AuthError covers missing credentials, sessions and broken settings.
	AuthError = 2

	// BackendError is any failure reported by the remote backend.
	BackendError = 3

	// LocalError is a failure of the local task database.
	LocalError = 4
)

// Package logging provides file-based logging with rotation for ragkb.
// The CLI writes JSON logs to ~/.ragkb/logs/server.log at info level, or at
// debug level when the --debug flag is set; it does not write logs to
// stderr.
package logging

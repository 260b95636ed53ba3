// Package log provides secure logging built on top of the standard slog
// package.
//
// The SecureHandler wraps any slog.Handler and:
//   - masks sensitive keys (Cookie, Authorization, tokens, passwords)
//   - masks secret-looking values (bearer and basic credentials, JWTs)
//   - masks passwords in URL user info and secret query parameters, also
//     inside error messages
//   - appends the correlation id stored with WithCorrelationID
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	ctx = log.WithCorrelationID(ctx, id.String())
//	logger.InfoContext(ctx, "extraction started", "url", pageURL)
package log

// Package log builds slog loggers that redact credentials and personal
// contact data.
//
// SecureHandler masks:
//   - values of credential keys (authorization, cookie, token, password, ...)
//   - bearer, basic and JWT values
//   - e-mail addresses and phone numbers inside any string value or message
//   - user:password pairs embedded in proxy URLs
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("fetched page", "url", u, "cookie", cookie) // cookie is masked
package log

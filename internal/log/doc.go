// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Audited sites are arbitrary third-party URLs, and the URLs users pass in
// sometimes carry credentials or signed query strings. The SecureHandler
// masks:
//   - HTTP header values (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Values under keys that name secrets (password, token, session)
//   - Bearer, Basic, JWT and AWS-key shaped values
//   - Userinfo and token-like query parameters inside logged URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("fetching", "url", "https://user:pw@example.com/?token=abc")
//	// url=https://***REDACTED***@example.com/?token=%2A%2A%2AREDACTED%2A%2A%2A
package log

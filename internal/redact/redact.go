// Package redact strips credentials from error text before it is logged.
//
// The errors that reach genflow's logs come from the snapshot backends:
// pgx connection failures name the database user and may echo the
// connection string, go-redis errors may echo a redis:// URL. Host names and
// ports are kept, since they are what an operator needs to find the
// unreachable backend.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	JWTPlaceholder        = "[REDACTED_JWT]"
)

var (
	// userinfo of postgres://, postgresql://, redis:// and rediss:// URLs
	urlUserInfoRegex = regexp.MustCompile(`(?i)\b((?:postgres(?:ql)?|rediss?)://)[^@/\s]+@`)

	// key=value pairs of libpq DSNs and pgx error prefixes
	keyValueRegex = regexp.MustCompile(`(?i)\b(user|password|passwd|pwd)=('[^']*'|[^\s&'"` + "`" + `]+)`)

	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
)

// String returns input with credentials replaced by placeholders.
func String(input string) string {
	if input == "" {
		return input
	}
	out := urlUserInfoRegex.ReplaceAllString(input, "${1}"+CredentialPlaceholder+"@")
	out = keyValueRegex.ReplaceAllString(out, "${1}="+CredentialPlaceholder)
	return jwtRegex.ReplaceAllString(out, JWTPlaceholder)
}

// Error is String applied to err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

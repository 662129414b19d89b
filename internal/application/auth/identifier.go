package auth

import "regexp"

// IdentifierKind says which users column a supplied identifier keys into.
type IdentifierKind string

const (
	KindEmail    IdentifierKind = "email"
	KindUsername IdentifierKind = "username"
)

// emailPattern: local part without whitespace or '@', then '@', then a
// domain without whitespace or '@' containing at least one dot.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ClassifyIdentifier decides whether an identifier is an email address
// or a username. The shape alone drives which lookup key is used.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if emailPattern.MatchString(identifier) {
		return KindEmail
	}
	return KindUsername
}

// Package jwa defines the JSON Web Algorithm identifiers (RFC 7518)
// supported by the signing engine.
//
// The set is closed: only ES256, RS256 and HS256 can be parsed, any other
// value, including "none", is rejected.
package jwa

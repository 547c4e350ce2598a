// Package jws implements JSON Web Signature (RFC 7515) in compact
// serialization for ES256, RS256 and HS256.
//
// A Message is signed with a Signer to produce a Compact object, which
// serializes to the three-segment "header.payload.signature" form. Parse
// restores a Compact object from text, and Validate checks the signature with
// a Validator of the same algorithm family, returning the Message.
//
// Signers and validators are closed sets: a validator is never applied to a
// token of another algorithm family, and critical header extensions are
// always rejected.
package jws

// Package jwk implements the public subset of JSON Web Keys (RFC 7517)
// used to distribute JWS verification keys.
//
// A Key is either an EC (P-256) or an RSA public key. Private key members
// are not part of the model: the decoder rejects unknown members, so a JWK
// carrying "d" or any other private parameter fails to parse.
//
// The package also provides KeySet (JWK Set), RFC 7638 thumbprints and a bridge
// to go-jose JSONWebKey values.
package jwk

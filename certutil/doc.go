// Package certutil provides PEM and DER helpers for keys and certificate chains
// used with JWS signers and x5c headers.
package certutil

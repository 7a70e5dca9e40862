// Package keys implements Ed25519 signing/verification over canonicalized
// records (C2) plus a local-first filesystem key store used by cmd/irrl-ctl
// and by the running service for its own instance key.
//
// Stable: KeyPair generation, Sign/Verify, SignObject/VerifyObject.
// Experimental: the filesystem-backed KeyStore — a local convenience, not
// part of the wire protocol.
package keys

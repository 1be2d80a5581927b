// Package jwt reads timing and identity claims out of server-issued
// access tokens without verifying signatures, which is the only safe
// JWT operation for a client that never holds verification keys.
package jwt

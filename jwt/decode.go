package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines a public type used by sessionkit APIs.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	UID  string `json:"uid,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ErrNoExpiry is an exported constant or variable used by the session engine.
var ErrNoExpiry = errors.New("token carries no exp claim")

// DecodeUnverified describes the decodeunverified operation and its observable behavior.
//
// DecodeUnverified may return an error when input validation, dependency calls, or security checks fail.
// DecodeUnverified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DecodeUnverified(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	// The signature is deliberately not checked. The server owns token
	// validity; the client only reads scheduling and identity claims.
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiresAt describes the expiresat operation and its observable behavior.
//
// ExpiresAt may return an error when input validation, dependency calls, or security checks fail.
// ExpiresAt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ExpiresAt(tokenStr string) (time.Time, error) {
	claims, err := DecodeUnverified(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// TimeToExpiry describes the timetoexpiry operation and its observable behavior.
//
// TimeToExpiry may return an error when input validation, dependency calls, or security checks fail.
// TimeToExpiry does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func TimeToExpiry(tokenStr string, now time.Time) (time.Duration, error) {
	exp, err := ExpiresAt(tokenStr)
	if err != nil {
		return 0, err
	}
	return exp.Sub(now), nil
}

// Package jwt signs and verifies HS256 tokens on top of golang-jwt.
//
// Service is claims-agnostic: callers embed jwt.RegisteredClaims from
// golang-jwt in their own struct. Parse errors are mapped to this
// package's sentinels so callers never depend on golang-jwt error values.
package jwt

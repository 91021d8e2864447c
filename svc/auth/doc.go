// Package auth orchestrates the credential lifecycle: registration with
// email verification, password login with lockout, refresh-token rotation,
// password recovery and OAuth sign-in.
//
// Service depends only on interfaces from svc/credential, svc/otp and
// svc/saga plus the concrete token issuer and mail sender, all supplied by
// the caller. Failures meant for clients are core.AppError values; anything
// else is an internal error.
package auth

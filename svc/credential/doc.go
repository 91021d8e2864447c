// Package credential owns the persisted user record: identity, password
// hash, verification state, lockout counters and the refresh-token session
// list.
//
// Stores return errors from the closed set in pkg/mongo (ErrNotFound,
// *DuplicateKeyError, *OtherError) so callers can branch with errors.Is and
// errors.As without importing the driver.
package credential

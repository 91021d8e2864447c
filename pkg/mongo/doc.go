// Package mongo wraps the official MongoDB driver with connection retry,
// health checks, a transaction runner and a closed classification of
// storage errors.
//
// Stores built on this package never inspect driver errors directly. They
// pass them through Classify, which yields exactly one of:
//
//   - nil
//   - ErrNotFound
//   - *DuplicateKeyError, carrying the offending field names
//   - *OtherError, wrapping the original cause
//
// and then branch with errors.Is / errors.As.
package mongo

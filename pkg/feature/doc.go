// Package feature provides runtime feature flags with pluggable rollout
// strategies.
//
// A flag is evaluated per request context: a globally disabled flag is always
// off, an enabled flag without a strategy is always on, and otherwise the
// strategy decides.
//
//	p, _ := feature.NewMemoryProvider(&feature.Flag{Name: "registration_transactions", Enabled: true})
//	on, err := p.IsEnabled(ctx, "registration_transactions")
package feature

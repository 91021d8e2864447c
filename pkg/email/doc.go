// Package email delivers transactional mail.
//
// PostmarkSender is used in deployed environments; DevSender writes each
// message to disk so local flows can be exercised without an account.
// Message bodies are built from templ components in the templates package.
package email

// Package auth implements password hashing, JWT issuance and verification,
// the bearer-token guard for protected routes, and the account service that
// ties them to a CredentialStore.
//
// Tokens are stateless: they are never stored, cannot be revoked, and become
// invalid only by expiry or a change of the process signing secret. Refresh
// mints a replacement token; the old one stays valid until it expires.
package auth

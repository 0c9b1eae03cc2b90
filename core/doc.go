// Package core contains the OAuth 1.0a domain: credentials, request signing,
// the three-legged token exchange, the overwrite policy and the status check.
// Storage, transport and terminal interaction are injected through the
// contracts in contracts.go; core must not import any adapter package.
package core

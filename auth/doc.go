// Package auth implements the request-authorization contract of authgate.
//
// A request passes through two stateless stages:
//   - Authenticator: extracts the bearer credential and asks the identity
//     provider to verify it, producing a Principal.
//   - Authorizer: resolves the Principal's Role from the profile store and
//     checks it against a caller-supplied allow-list.
//
// Failures are reported as *Error values carrying a closed Kind. ToResponse
// maps every Kind to the HTTP status and message returned to clients.
package auth

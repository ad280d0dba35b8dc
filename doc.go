// Package contacts implements a multi-tenant contact book API: account
// registration with email confirmation, JWT session management, and per-user
// contact storage.
//
// Session lifecycle:
//   - Login checks bcrypt credentials and issues an access/refresh token
//     pair. Each account stores at most one live refresh token; every
//     successful login or refresh rotates it, so older refresh tokens stop
//     working the moment a new pair is issued.
//   - Refresh validates the presented token (signature, expiry, refresh
//     scope) and compares it against the stored value. A verifiable token
//     that does not match clears the stored token and kills the session
//     chain.
//
// Email confirmation:
//   - New accounts are unconfirmed and cannot log in. A confirmation token
//     (signed, long-lived, no scope claim) is mailed out at signup and on
//     demand; redeeming it flips the account to confirmed. Redeeming twice
//     is harmless.
//
// Request authorization:
//   - middleware/jwtware guards API routes. Tokens must carry the access
//     scope and resolve to a live account. Every failure collapses to the
//     same unauthorized response; only the login route reports granular
//     credential errors.
package contacts

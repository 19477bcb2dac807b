// Package jobboard stores job postings and applications and gates the
// applicant history behind a signed session cookie.
//
// Sessions:
//   - TokenService issues and verifies HS256 tokens that carry the caller's
//     email as identity. Verification is stateless; nothing about a session is
//     persisted.
//   - SessionCookies builds the cookie that carries the token. Issue and Clear
//     derive from one attribute template so a browser always honors the clear.
//   - The jwtware middleware reads the cookie, verifies it and publishes the
//     identity on the request context. Requests without a valid session get a
//     401 before any handler runs.
//
// Ownership:
//   - Authorize compares the verified identity with the identity named in the
//     request. OwnershipGuard applies it to query parameters after the session
//     gate. Mismatches answer 403.
//
// Board:
//   - Jobs and Applications are bun backed repositories. Listing an
//     applicant's history joins every application with a summary of its job
//     through ApplicationEnricher, which runs the lookups concurrently and keeps
//     the listing order.
//   - Status changes are published through a StatusPublisher, Redis in
//     production and a no-op otherwise.
package jobboard

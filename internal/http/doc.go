// Package http provides HTTP handlers and middleware for the EventMetrix API.
//
// The router exposes the following endpoints:
//   - POST /auth/login: issues a session token, creating the account on first
//     sight of an identifier. Body: {"identifier","password"}. Response:
//     {"token","expiresAt","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /auth/register: explicit registration exchanging the registerRequest
//     payload defined in auth_handler.go. Responds 409 when the email is taken.
//   - GET /sessions/current, DELETE /sessions/current: inspect or revoke the
//     active session. DELETE returns 204 No Content and clears the cookie.
//   - GET /profile: the authenticated user's record, without credentials.
//   - GET /events, POST /events, GET /events/{id}/metrics: event tracking
//     endpoints exchanging the eventRequest/eventResponse payloads defined in
//     event_handler.go. Metrics are synthesized at creation time.
//   - GET /teams, POST /teams, GET /catalog: team catalog endpoints. /catalog is
//     public and bundles teams, countries and event types for form population.
//   - GET /dashboard/summary, /dashboard/top-events, /dashboard/trends,
//     /dashboard/event-types: per-user dashboard rollups.
//   - GET /healthz, GET /metrics: liveness probe and Prometheus exposition.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

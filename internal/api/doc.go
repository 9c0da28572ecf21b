// Package api serves the ask-compare-choose loop over HTTP.
//
// Sessions are created with POST /api/sessions, which returns the session id
// and a signed session token. Every session-scoped route requires that token
// in the X-Session-Token header. When paths.api_token is configured, all
// routes additionally require "Authorization: Bearer <token>".
//
// Controller errors map to status codes by kind: validation and invalid
// category to 400, unknown sessions to 404, state conflicts to 409 and
// configuration problems to 500. A choice whose durable write failed still
// answers 200 with a warning, because the in-session record was kept.
package api

// Package api exposes the role registry over HTTP.
//
// The server provides CRUD routes for roles, membership and hierarchy
// management for the admins root, and a /check endpoint that evaluates
// a principal against a named role. Errors from the roles package are
// mapped to HTTP status codes: unknown roles become 404, name and
// hierarchy conflicts become 409.
package api

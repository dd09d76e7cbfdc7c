// Package library implements a small book catalog manager: user accounts
// with bcrypt credentials, HS256 bearer tokens served both as an http-only
// cookie (HTML flow) and an Authorization header (JSON API), and
// author-scoped book CRUD backed by bun over sqlite.
//
// The package exposes the building blocks (token service, authenticator,
// repositories, controllers); cmd/server wires them into a fiber app.
package library

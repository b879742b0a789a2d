// Package middleware wraps session stores with extra behavior, such as
// sealing records at rest.
package middleware

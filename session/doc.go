// Package session provides SessionStore implementations for persisting
// session lifecycle and turn history.
package session

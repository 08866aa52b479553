// Package testutil provides instrumented test doubles shared by the
// package-level test suites.
package testutil

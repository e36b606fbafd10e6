// Package valsettest provides mocks and helper functions for testing
// the valset packages.
package valsettest

// Package lifecycle drives one environment through a test-suite run:
// bootstrap when needed, deploy a bundle, reset to a clean state between
// tests and destroy at the end.
//
// A Controller owns the environment for the whole run and is not safe for
// concurrent use. Under dry-run every operation returns success without
// running anything.
package lifecycle

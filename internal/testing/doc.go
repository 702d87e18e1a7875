// Package testing provides test utilities, builders, and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - MockRunner: testify mock of the process runner
//   - MockBackend: testify mock of an environment control plane
//   - ConfigBuilder: fluent builder for test configurations
//   - StatusBuilder: fluent builder for environment status snapshots
//
// Usage:
//
//	runner := testing.NewMockRunner().
//	    WithOutput("juju", "Action queued with id: ...")
//
//	status := testing.NewStatus().
//	    WithService("wordpress", "wordpress/0").
//	    Build()
package testing

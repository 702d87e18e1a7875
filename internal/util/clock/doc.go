// Package clock abstracts wall-clock reads and waits so that deadline-bounded
// loops can be driven deterministically in tests.
//
// Production code uses [Real]. Tests use [NewFake], whose waits complete
// immediately and move the fake time forward by the requested duration.
package clock

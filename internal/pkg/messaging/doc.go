// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// The goal is to keep business code independent from the underlying messaging
// system. NATS is the implementation shipped here; others can be added behind
// the same interfaces without changing use-case code.
package messaging

// Package uid provides the application's identifier generators.
package uid

// NumberID generates int64 identifiers.
type NumberID interface {
	// Generate returns a new unique int64 identifier.
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	// Generate returns a new unique string identifier.
	Generate() string
}

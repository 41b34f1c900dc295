package validator

// Validator validates a struct against its declared rules.
type Validator interface {
	// Validate returns nil when data passes all rules, or an error
	// describing the failing fields.
	Validate(data any) error
}

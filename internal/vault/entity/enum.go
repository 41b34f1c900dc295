package entity

import "strings"

// AccessType classifies how a code left the vault.
type AccessType string

const (
	// AccessTypeView means the code was displayed to the owner.
	AccessTypeView AccessType = "view"

	// AccessTypeCopy means the code was handed to the clipboard.
	AccessTypeCopy AccessType = "copy"
)

func (a AccessType) String() string {
	return string(a)
}

// IsValid reports whether the access type is one of the known values.
func (a AccessType) IsValid() bool {
	return a == AccessTypeView || a == AccessTypeCopy
}

// SortKey selects the enumeration order of an owner's credentials.
type SortKey string

const (
	SortKeyName      SortKey = "name"
	SortKeyIssuer    SortKey = "issuer"
	SortKeyCreatedAt SortKey = "created_at"
)

// SortKeyFromString maps a raw query value to a SortKey, defaulting to
// name order for anything unrecognized.
func SortKeyFromString(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "issuer":
		return SortKeyIssuer
	case "created_at", "createdat":
		return SortKeyCreatedAt
	default:
		return SortKeyName
	}
}

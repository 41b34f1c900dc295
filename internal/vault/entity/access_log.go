package entity

import (
	"time"

	"github.com/authvault/authvault/internal/pkg/valueobject"
)

// AccessLog is one immutable audit row: a code was viewed or copied.
// Enrichment fields are nullable; a failed lookup leaves them nil rather
// than blocking the write.
type AccessLog struct {
	ID           int64
	CredentialID int64
	OwnerID      int64
	AccessType   AccessType
	CreatedAt    time.Time
	IPAddress    *string
	UserAgent    *string
	DeviceName   *string
	LocationData *string
	Metadata     valueobject.JSONMap
}

package event

const CredentialAccessedDestination string = "vault_credential_accessed"

type CredentialAccessedMessage struct {
	CredentialID int64  `json:"credential_id"`
	OwnerID      int64  `json:"owner_id"`
	AccessType   string `json:"access_type"`
	AccessedAt   int64  `json:"accessed_at"`
	DeviceName   string `json:"device_name"`
}

package inbound

import (
	"time"

	"github.com/authvault/authvault/internal/vault/entity"
)

type AddCredentialRequest struct {
	Name      string `json:"name"`
	Issuer    string `json:"issuer"`
	Secret    string `json:"secret"`
	Period    int    `json:"period"`
	Digits    int    `json:"digits"`
	Algorithm string `json:"algorithm"`
}

type CredentialResponse struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Issuer    string    `json:"issuer,omitempty"`
	Period    int       `json:"period"`
	Digits    int       `json:"digits"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"created_at"`
}

type ImportCredentialRequest struct {
	URI string `json:"uri"`
}

type UpdateCredentialRequest struct {
	Name      *string `json:"name"`
	Issuer    *string `json:"issuer"`
	Secret    *string `json:"secret"`
	Period    *int    `json:"period"`
	Digits    *int    `json:"digits"`
	Algorithm *string `json:"algorithm"`
}

type UpdateCredentialResponse struct{}

func (UpdateCredentialResponse) Message() string {
	return "Credential updated."
}

type RemoveCredentialResponse struct{}

func (RemoveCredentialResponse) Message() string {
	return "Credential removed."
}

type CredentialCodeResponse struct {
	ID        int64  `json:"id,string"`
	Name      string `json:"name"`
	Issuer    string `json:"issuer,omitempty"`
	Code      string `json:"code,omitempty"`
	Remaining int    `json:"remaining"`
	Period    int    `json:"period"`
	Digits    int    `json:"digits"`
	Broken    bool   `json:"broken,omitempty"`
}

type ListCredentialsResponse struct {
	Credentials []CredentialCodeResponse `json:"credentials"`
}

type ExportCredentialResponse struct {
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

func newCredentialCodeResponse(c entity.CredentialCode) CredentialCodeResponse {
	return CredentialCodeResponse{
		ID:        c.ID,
		Name:      c.Name,
		Issuer:    c.Issuer,
		Code:      c.Code,
		Remaining: c.Remaining,
		Period:    c.Period,
		Digits:    c.Digits,
		Broken:    c.Err,
	}
}

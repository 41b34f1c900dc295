package inbound

import (
	"github.com/authvault/authvault/internal/pkg/router"
	"github.com/authvault/authvault/internal/vault/usecase"
)

// HTTPEndpoint exposes HTTP handlers for credential and code workflows.
type HTTPEndpoint struct {
	uc uc
}

// ListCredentials returns the caller's credentials with current codes.
// @Summary List credentials
// @Description Returns every enrolled credential with its current code and countdown.
// @Tags Vault, Credentials
// @Security BearerAuth
// @Produce json
// @Param sort query string false "Sort key: name, issuer or created_at"
// @Param q query string false "Case-insensitive filter on name and issuer"
// @Success 200 {object} router.successResponse{data=ListCredentialsResponse} "Credential list"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials [get]
func (h *HTTPEndpoint) ListCredentials(r *router.Request) (any, error) {
	resp, err := h.uc.ListCredentials(r.Context(), usecase.ListCredentialsInput{
		Sort:  r.GetQuery("sort"),
		Query: r.GetQuery("q"),
	})
	if err != nil {
		return nil, err
	}

	creds := make([]CredentialCodeResponse, 0, len(resp.Credentials))
	for _, c := range resp.Credentials {
		creds = append(creds, newCredentialCodeResponse(c))
	}

	return ListCredentialsResponse{Credentials: creds}, nil
}

// AddCredential enrolls a credential from manually entered parameters.
// @Summary Add credential
// @Description Enrolls a TOTP credential. Period, digits and algorithm fall back to RFC defaults when omitted.
// @Tags Vault, Credentials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AddCredentialRequest true "Credential payload"
// @Success 200 {object} router.successResponse{data=CredentialResponse} "Enrolled credential"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials [post]
func (h *HTTPEndpoint) AddCredential(r *router.Request) (any, error) {
	var req AddCredentialRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AddCredential(r.Context(), usecase.AddCredentialInput{
		Name:      req.Name,
		Issuer:    req.Issuer,
		Secret:    req.Secret,
		Period:    req.Period,
		Digits:    req.Digits,
		Algorithm: req.Algorithm,
	})
	if err != nil {
		return nil, err
	}

	return newCredentialResponse(resp), nil
}

// ImportCredential enrolls a credential from an otpauth:// URI.
// @Summary Import credential
// @Description Enrolls a TOTP credential from a scanned otpauth:// URI.
// @Tags Vault, Credentials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ImportCredentialRequest true "Import payload"
// @Success 200 {object} router.successResponse{data=CredentialResponse} "Enrolled credential"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 409 {object} router.errorResponse "Duplicate submission"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials/import [post]
func (h *HTTPEndpoint) ImportCredential(r *router.Request) (any, error) {
	var req ImportCredentialRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ImportCredential(r.Context(), usecase.ImportCredentialInput{URI: req.URI})
	if err != nil {
		return nil, err
	}

	return newCredentialResponse(resp), nil
}

// UpdateCredential applies a partial update to one credential.
// @Summary Update credential
// @Description Updates any subset of a credential's name, issuer, secret and code parameters.
// @Tags Vault, Credentials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Credential ID"
// @Param request body UpdateCredentialRequest true "Fields to change"
// @Success 200 {object} router.successResponse "Credential updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials/{id} [put]
func (h *HTTPEndpoint) UpdateCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UpdateCredentialRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.UpdateCredential(r.Context(), usecase.UpdateCredentialInput{
		ID:        id,
		Name:      req.Name,
		Issuer:    req.Issuer,
		Secret:    req.Secret,
		Period:    req.Period,
		Digits:    req.Digits,
		Algorithm: req.Algorithm,
	}); err != nil {
		return nil, err
	}

	return UpdateCredentialResponse{}, nil
}

// RemoveCredential deletes one credential.
// @Summary Remove credential
// @Description Deletes a credential; its codes stop immediately.
// @Tags Vault, Credentials
// @Security BearerAuth
// @Produce json
// @Param id path string true "Credential ID"
// @Success 200 {object} router.successResponse "Credential removed"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials/{id} [delete]
func (h *HTTPEndpoint) RemoveCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.RemoveCredential(r.Context(), usecase.RemoveCredentialInput{ID: id}); err != nil {
		return nil, err
	}

	return RemoveCredentialResponse{}, nil
}

// ViewCode returns the current code for one credential.
// @Summary View code
// @Description Returns the current code and countdown for one credential and records a view access.
// @Tags Vault, Codes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Credential ID"
// @Success 200 {object} router.successResponse{data=CredentialCodeResponse} "Current code"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials/{id}/code [get]
func (h *HTTPEndpoint) ViewCode(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ViewCode(r.Context(), usecase.AccessCodeInput{
		ID:         id,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return newCredentialCodeResponse(resp.Code), nil
}

// CopyCode returns the current code for clipboard use.
// @Summary Copy code
// @Description Returns the current code for clipboard use and records a copy access.
// @Tags Vault, Codes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Credential ID"
// @Success 200 {object} router.successResponse{data=CredentialCodeResponse} "Current code"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials/{id}/code/copy [post]
func (h *HTTPEndpoint) CopyCode(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.CopyCode(r.Context(), usecase.AccessCodeInput{
		ID:         id,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return newCredentialCodeResponse(resp.Code), nil
}

// ExportCredential returns the otpauth:// URI and QR image for one credential.
// @Summary Export credential
// @Description Rebuilds the otpauth:// URI and a QR rendering so the credential can be moved to another authenticator.
// @Tags Vault, Credentials
// @Security BearerAuth
// @Produce json
// @Param id path string true "Credential ID"
// @Success 200 {object} router.successResponse{data=ExportCredentialResponse} "Export payload"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/vault/credentials/{id}/export [get]
func (h *HTTPEndpoint) ExportCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ExportCredential(r.Context(), usecase.ExportCredentialInput{ID: id})
	if err != nil {
		return nil, err
	}

	return ExportCredentialResponse{URI: resp.URI, QRCode: resp.QRCode}, nil
}

func newCredentialResponse(out *usecase.AddCredentialOutput) CredentialResponse {
	return CredentialResponse{
		ID:        out.ID,
		Name:      out.Name,
		Issuer:    out.Issuer,
		Period:    out.Period,
		Digits:    out.Digits,
		Algorithm: string(out.Algorithm),
		CreatedAt: out.CreatedAt,
	}
}

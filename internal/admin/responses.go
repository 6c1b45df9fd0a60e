// Package admin serves the back-office routes that are not owned by a
// single domain: login, sent emails, failed events and magic link minting.
package admin

import (
	"strings"

	conventionmodels "immersionfacile/internal/convention/models"
	dErrors "immersionfacile/pkg/domain-errors"
)

// LoginRequest is the back-office credentials body.
type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.User = strings.TrimSpace(r.User)
	if r.User == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "user and password are required")
	}
	return nil
}

// LoginResponse carries the admin token.
type LoginResponse struct {
	Token string `json:"token"`
}

// MagicLinkRequest names the convention and role a link is minted for.
type MagicLinkRequest struct {
	ID    conventionmodels.ID
	Role  conventionmodels.Role
	Email string
}

func (r *MagicLinkRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return dErrors.New(dErrors.CodeValidation, "id is required")
	}
	if !r.Role.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown role %q", r.Role)
	}
	return nil
}

// MagicLinkResponse is the minted token.
type MagicLinkResponse struct {
	JWT string `json:"jwt"`
}

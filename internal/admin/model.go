// Package admin manages back-office accounts. Only a "main" admin may
// create, edit, list, delete or reset the password of other admins.
package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	RoleMain   = "main"
	RoleNormal = "normal"
)

var (
	ErrForbidden = errors.New("only the main admin can manage admins")
	ErrNotFound  = errors.New("admin not found")
)

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid admin: " + strings.Join(parts, "; ")
}

// CreateRequest is the body of POST /api/admins.
// swagger:model
type CreateRequest struct {
	Name        string `json:"name"        example:"Sara Tesfaye"`
	Email       string `json:"email"       example:"sara@geezshoe.com"`
	Password    string `json:"password"    example:"secret1"`
	RequesterID string `json:"requesterId"`
}

// EditRequest is the body of PUT /api/admins.
// swagger:model
type EditRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"        example:"Sara Tesfaye"`
	Email       string `json:"email"       example:"sara@geezshoe.com"`
	RequesterID string `json:"requesterId"`
}

// ResetPasswordRequest is the body of PUT /api/admins/password.
// swagger:model
type ResetPasswordRequest struct {
	ID          string `json:"id"`
	NewPassword string `json:"newPassword" example:"secret2"`
	RequesterID string `json:"requesterId"`
}

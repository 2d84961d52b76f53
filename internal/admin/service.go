package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MikeMC777/geezshoe/internal/identity"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identity is the login store behind each admin record. An admin's id is the
// id of its identity.
type Identity interface {
	CreateUser(ctx context.Context, email, password, name, role string) (*identity.User, error)
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, password string) error
	DeleteUser(ctx context.Context, id string) error
}

type Service struct {
	repo     Repository
	identity Identity
	log      *slog.Logger
}

func NewService(repo Repository, id Identity, log *slog.Logger) *Service {
	return &Service{repo: repo, identity: id, log: log}
}

// requireMain re-reads the requester's role; the caller's claim is not trusted.
func (s *Service) requireMain(ctx context.Context, requesterID string) error {
	if strings.TrimSpace(requesterID) == "" {
		return ErrForbidden
	}
	a, err := s.repo.GetByID(ctx, requesterID)
	if errors.Is(err, ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("resolve requester: %w", err)
	}
	if a.Role != RoleMain {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Account, error) {
	if err := s.requireMain(ctx, req.RequesterID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	checkEmail(fields, email)
	if len(req.Password) < identity.MinPasswordLength {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	u, err := s.identity.CreateUser(ctx, email, req.Password, name, RoleNormal)
	if errors.Is(err, identity.ErrAlreadyExist) {
		return nil, &ValidationError{Fields: map[string]string{"email": "already registered"}}
	}
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	a := &Account{ID: u.ID, Name: name, Email: email, Role: RoleNormal}
	if err := s.repo.Create(ctx, a); err != nil {
		if derr := s.identity.DeleteUser(ctx, u.ID); derr != nil {
			s.log.Error("orphaned identity after admin insert failure", "id", u.ID, "err", derr)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin created", "id", a.ID, "by", req.RequesterID)
	return a, nil
}

// Edit updates a normal admin; an email change is carried to the identity and
// undone on the record if that fails.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*Account, error) {
	if err := s.requireMain(ctx, req.RequesterID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	if strings.TrimSpace(req.ID) == "" {
		fields["id"] = "required"
	}
	if name == "" {
		fields["name"] = "required"
	}
	checkEmail(fields, email)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	before, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if before.Role != RoleNormal {
		return nil, ErrNotFound
	}
	a, err := s.repo.UpdateNormal(ctx, req.ID, name, email)
	if err != nil {
		return nil, err
	}
	if before.Email != email {
		if err := s.identity.UpdateEmail(ctx, req.ID, email); err != nil {
			if rerr := s.repo.SetEmail(ctx, req.ID, before.Email); rerr != nil {
				s.log.Error("admin email rollback failed", "id", req.ID, "err", rerr)
			}
			return nil, fmt.Errorf("update identity email: %w", err)
		}
	}
	return a, nil
}

// Delete removes a normal admin. Removing the identity afterwards is best-effort.
func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	if err := s.requireMain(ctx, requesterID); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Fields: map[string]string{"id": "required"}}
	}
	ok, err := s.repo.DeleteNormal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := s.identity.DeleteUser(ctx, id); err != nil {
		s.log.Warn("identity delete failed after admin delete", "id", id, "err", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.requireMain(ctx, req.RequesterID); err != nil {
		return err
	}
	fields := map[string]string{}
	if strings.TrimSpace(req.ID) == "" {
		fields["id"] = "required"
	}
	if len(req.NewPassword) < identity.MinPasswordLength {
		fields["newPassword"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	target, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if target.Role != RoleNormal {
		return ErrNotFound
	}
	if err := s.identity.UpdatePassword(ctx, req.ID, req.NewPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, requesterID string) ([]Account, error) {
	if err := s.requireMain(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListNormal(ctx)
}

// Bootstrap creates the main admin unless its identity already exists.
func (s *Service) Bootstrap(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.identity.CreateUser(ctx, email, password, "Main admin", RoleMain)
	if errors.Is(err, identity.ErrAlreadyExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap identity: %w", err)
	}
	if err := s.repo.Create(ctx, &Account{ID: u.ID, Name: "Main admin", Email: email, Role: RoleMain}); err != nil {
		if derr := s.identity.DeleteUser(ctx, u.ID); derr != nil {
			s.log.Error("orphaned identity after main admin insert failure", "id", u.ID, "err", derr)
		}
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Info("main admin bootstrapped", "id", u.ID, "email", email)
	return nil
}

func checkEmail(fields map[string]string, email string) {
	switch {
	case email == "":
		fields["email"] = "required"
	case !emailPattern.MatchString(email):
		fields["email"] = "invalid email"
	}
}

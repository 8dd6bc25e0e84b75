package user

import (
	"context"
	"errors"
	"strings"

	"storvbox-be/internal/auth"
	"storvbox-be/internal/logger"

	"go.uber.org/zap"
)

const adminListLimit = 100

// SessionIssuer is satisfied by *auth.Manager.
type SessionIssuer interface {
	CreateSession(u auth.SessionUser) (string, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id string, in UpdateInput) (*User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type service struct {
	repo     Repository
	sessions SessionIssuer
}

func NewService(repo Repository, sessions SessionIssuer) Service {
	return &service{repo: repo, sessions: sessions}
}

func SessionUserOf(u *User) auth.SessionUser {
	return auth.SessionUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		PriceTier: string(u.PriceTier),
	}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (string, *User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
		zap.String("email", in.Email),
	)

	if err := validateRegister(in); err != nil {
		log.Info("register validation failed")
		return "", nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check email", zap.Error(err))
		return "", nil, err
	}
	if exists {
		return "", nil, ErrEmailExists
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	// The unique index still guards concurrent registrations racing past the check above.
	u, err := s.repo.Create(ctx, CreateParams{
		Email:        in.Email,
		PasswordHash: hashed,
		Name:         in.Name,
		Phone:        in.Phone,
		Company:      in.Company,
		Role:         RoleCustomer,
		PriceTier:    TierStandard,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.sessions.CreateSession(SessionUserOf(u))
	if err != nil {
		log.Error("failed to create session", zap.String("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("register service completed", zap.String("user_id", u.ID))
	return token, u, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	if email == "" || password == "" {
		return "", nil, auth.ErrInvalidCredentials
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login: unknown email")
			return "", nil, auth.ErrInvalidCredentials
		}
		log.Error("login: lookup failed", zap.Error(err))
		return "", nil, err
	}

	if u.PasswordHash == nil || !CheckPasswordHash(password, *u.PasswordHash) {
		log.Info("login: password mismatch", zap.String("user_id", u.ID))
		return "", nil, auth.ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		log.Warn("failed to stamp last login", zap.String("user_id", u.ID), zap.Error(err))
	}

	token, err := s.sessions.CreateSession(SessionUserOf(u))
	if err != nil {
		log.Error("failed to create session", zap.Error(err))
		return "", nil, err
	}

	log.Info("login completed", zap.String("user_id", u.ID))
	return token, u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx, adminListLimit)
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("user_id", id),
	)

	if in.Empty() {
		return nil, ErrNothingToSet
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if in.PriceTier != nil && !in.PriceTier.Valid() {
		return nil, ErrInvalidTier
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}

	u, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	log.Info("user updated by staff")
	return u, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("user deleted by staff", zap.String("user_id", id))
	return nil
}

func (s *service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

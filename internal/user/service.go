package user

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/userapi/internal/observability"
)

// Repository persists users. Implementations may cache.
type Repository interface {
	ListAll(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Save(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User, changes map[string]any) (*User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// CredentialStore looks up a user together with its password hash.
// It returns ErrNotFound when no user has the email.
type CredentialStore interface {
	CredentialsByEmail(ctx context.Context, email string) (*User, error)
}

// Service implements the user use cases on top of a Repository.
type Service struct {
	repo        Repository
	credentials CredentialStore
	validator   *Validator
	hasher      *PasswordHasher
	logger      observability.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger observability.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service.
func NewService(
	repo Repository,
	credentials CredentialStore,
	validator *Validator,
	hasher *PasswordHasher,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		repo:        repo,
		credentials: credentials,
		validator:   validator,
		hasher:      hasher,
		logger:      observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.ListAll(ctx)
}

// Create validates input strictly, hashes the password and stores the
// new user.
func (s *Service) Create(ctx context.Context, input map[string]any) (*User, error) {
	if err := s.validator.Validate(input, true); err != nil {
		return nil, err
	}

	// Validate guarantees these are strings.
	password, _ := input[FieldPassword].(string)
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &User{Password: hash}
	u.Apply(input)

	created, err := s.repo.Save(ctx, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", observability.Int64("user_id", created.ID))
	return created, nil
}

// Find returns the user with id or ErrNotFound.
func (s *Service) Find(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the mutable fields of input to the user with id.
// ErrNotFound is checked before the input is validated.
func (s *Service) Update(ctx context.Context, id int64, input map[string]any) (*User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input, false); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, current, input)
}

// Delete removes the user with id and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("user deleted", observability.Int64("user_id", id))
	}
	return deleted, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.credentials.CredentialsByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, u.Password)
	if err != nil {
		s.logger.Warn("stored password hash is unreadable",
			observability.Int64("user_id", u.ID),
			observability.Error(err),
		)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

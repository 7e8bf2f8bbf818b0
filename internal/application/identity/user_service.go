package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/identity"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// UserService handles back-office user accounts
type UserService struct {
	txScope  scope.TransactionScope
	archiver archive.Archiver
}

// NewUserService creates a new UserService
func NewUserService(txScope scope.TransactionScope, archiver archive.Archiver) *UserService {
	return &UserService{
		txScope:  txScope,
		archiver: archiver,
	}
}

// Create creates a user with a hashed password. Usernames are unique
// case-insensitively.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "user", "create")
	defer span.End()

	var user *identity.User
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		taken, err := repos.Users().ExistsByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code,
				fmt.Sprintf("Username %q is already taken", req.Username))
		}

		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeUser)
		if err != nil {
			return err
		}
		user, err = identity.NewUser(publicID, req.Username, req.FullName, req.Password, identity.UserRole(req.Role))
		if err != nil {
			return err
		}
		user.Phone = req.Phone
		return repos.Users().Insert(ctx, user)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("public_id", user.PublicID),
		zap.String("role", string(user.Role)),
	)
	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	var user *identity.User
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		user, err = repos.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves a page of users
func (s *UserService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	var users []identity.User
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		users, total, err = repos.Users().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, ToUserResponse(&users[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a user to the trash with the password hash intact
func (s *UserService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeUser, id, reason, actorID)
}

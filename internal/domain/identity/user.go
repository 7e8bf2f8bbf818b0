package identity

import (
	"regexp"
	"strings"

	"github.com/grocer/backoffice/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole is the coarse permission group of a back-office user
type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleCashier UserRole = "CASHIER"
)

// IsValid returns true if the role is known
func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleCashier
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	letterPattern   = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// User is a back-office operator. The password hash travels with the user
// into archive snapshots so a restored account can still log in.
type User struct {
	shared.BaseAggregateRoot
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"password_hash"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
}

// NewUser creates a new active user with a hashed password
func NewUser(publicID, username, fullName, password string, role UserRole) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewValidationError("Full name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Role must be ADMIN or CASHIER")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		FullName:          strings.TrimSpace(fullName),
		Role:              role,
		Status:            UserStatusActive,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	// SetPassword bumps the version; a fresh user starts at 1
	user.Version = 1
	return user, nil
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = string(hash)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Deactivate blocks the user from logging in
func (u *User) Deactivate() {
	u.Status = UserStatusInactive
	u.Touch()
	u.IncrementVersion()
}

// IsAdmin returns true for administrators
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.NewValidationError("Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 bytes")
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return shared.NewValidationError("Password must contain at least one letter and one number")
	}
	return nil
}

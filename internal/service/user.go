package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"employee-management-system/internal/common"
	"employee-management-system/internal/logging"
	"employee-management-system/internal/mailer"
	"employee-management-system/internal/model"
	"employee-management-system/internal/util"
	"employee-management-system/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential store used by UserService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearPasswordReset(ctx context.Context, id string) error
	ConsumePasswordReset(ctx context.Context, id, tokenHash string, now time.Time, passwordHash string) error
}

// dummyHash is compared against when the email is unknown so both login
// failures cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), model.PasswordHashCost)

type UserService struct {
	users     UserStore
	tokens    *util.TokenService
	mail      mailer.Mailer
	clientURL string
	log       logging.Logger
}

func NewUserService(users UserStore, tokens *util.TokenService, mail mailer.Mailer, clientURL string, log logging.Logger) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		mail:      mail,
		clientURL: strings.TrimRight(clientURL, "/"),
		log:       log,
	}
}

// Register creates an account and signs the user in.
func (s *UserService) Register(ctx context.Context, in model.RegisterInput) (*model.AuthResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, common.ErrMissingFields
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if !validation.Email(in.Email) {
		return nil, common.ErrInvalidEmailFormat
	}
	if in.Role == "" {
		in.Role = model.RoleEmployee
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrNotFound):
		return nil, dependency(err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, dependency(err)
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	return s.signIn(user)
}

// Authenticate checks credentials. Unknown email and wrong password both
// yield common.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, dependency(err)
	}
	if !user.MatchPassword(password) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, in model.LoginInput) (*model.AuthResponse, error) {
	in.Email = model.NormalizeEmail(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, common.ErrMissingFields
	}
	if !validation.Email(in.Email) {
		return nil, common.ErrInvalidEmailFormat
	}

	user, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

func (s *UserService) signIn(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.IssueSessionToken(user.ID)
	if err != nil {
		return nil, dependency(err)
	}
	return model.NewAuthResponse(user, token), nil
}

// RequestPasswordReset emails a reset link when the address belongs to a
// user. Unknown addresses succeed silently. If the email cannot be
// delivered the stored token is cleared and common.ErrEmailDelivery is
// returned.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if !validation.Email(email) {
		return common.ErrInvalidEmailFormat
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return dependency(err)
	}

	plain, hashed, expiresAt, err := s.tokens.GeneratePasswordResetToken()
	if err != nil {
		return dependency(err)
	}
	if err := s.users.SetPasswordReset(ctx, user.ID, hashed, expiresAt); err != nil {
		return dependency(err)
	}

	msg, err := mailer.PasswordResetMessage(user.Email, s.clientURL+"/reset-password/"+plain)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error(ctx, "password reset email failed", "user_id", user.ID, "error", err)
		if clearErr := s.users.ClearPasswordReset(ctx, user.ID); clearErr != nil {
			s.log.Error(ctx, "clearing password reset token failed", "user_id", user.ID, "error", clearErr)
		}
		return common.Wrap(common.KindDependency, common.ErrEmailDelivery.Message, err)
	}

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword replaces the password of the user holding plainToken and
// consumes the token.
func (s *UserService) ResetPassword(ctx context.Context, plainToken string, in model.ResetPasswordInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	if plainToken == "" {
		return common.ErrInvalidOrExpiredToken
	}

	user, err := s.users.FindByResetToken(ctx, util.HashPasswordResetToken(plainToken), s.tokens.Now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		return dependency(err)
	}
	if user.PasswordResetTokenHash == nil ||
		!s.tokens.VerifyPasswordResetToken(plainToken, *user.PasswordResetTokenHash, user.PasswordResetExpiresAt) {
		return common.ErrInvalidOrExpiredToken
	}

	hash, err := model.HashPassword(in.Password)
	if err != nil {
		return dependency(err)
	}
	err = s.users.ConsumePasswordReset(ctx, user.ID, *user.PasswordResetTokenHash, s.tokens.Now(), hash)
	if err != nil {
		// another reset spent the token first
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		return dependency(err)
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// ResolveSession turns a session token into the Session of a live user.
func (s *UserService) ResolveSession(ctx context.Context, token string) (*model.Session, error) {
	userID, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, dependency(err)
	}
	return model.NewSession(user), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.New(common.KindNotFound, "User not found")
		}
		return nil, dependency(err)
	}
	return user, nil
}

// dependency classifies an unexpected store or transport failure.
func dependency(err error) error {
	var appErr *common.Error
	if errors.As(err, &appErr) {
		return err
	}
	return common.Wrap(common.KindDependency, common.ErrInternal.Message, err)
}

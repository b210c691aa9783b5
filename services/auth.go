package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gymdesk/models"
	"gymdesk/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

const minPasswordLength = 6

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     models.Role
}

// ValidationError carries a message safe to show to the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type AuthService struct {
	users    UserRepository
	tokens   *TokenIssuer
	codes    *ResetCodes
	mailer   EmailSender
	clubName string
	log      *slog.Logger
}

func NewAuthService(users UserRepository, tokens *TokenIssuer, codes *ResetCodes, mailer EmailSender,
	clubName string, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, codes: codes, mailer: mailer, clubName: clubName, log: log}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(in *RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Name == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return &ValidationError{Msg: "All fields are required"}
	}
	if !strings.Contains(in.Email, "@") {
		return &ValidationError{Msg: "Invalid email address"}
	}
	if !phonePattern.MatchString(in.Phone) {
		return &ValidationError{Msg: "Phone number must be 10 digits"}
	}
	if len(in.Password) < minPasswordLength {
		return &ValidationError{Msg: fmt.Sprintf("Password must be at least %d characters", minPasswordLength)}
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if in.Role != models.RoleMember && in.Role != models.RoleAdmin {
		return &ValidationError{Msg: "Invalid role"}
	}
	return nil
}

// Register creates the member and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(*u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("member registered", "user_id", u.ID, "role", u.Role)
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(*u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// ForgotPassword emails a short-lived reset code to a registered address.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	code, err := s.codes.Issue(u.Email)
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	minutes := int(s.codes.TTL().Minutes())
	err = s.mailer.Send(ctx, Email{
		To:      u.Email,
		Subject: "Password Reset Code",
		HTML: fmt.Sprintf("<p>Your password reset code is <b>%s</b>. It is valid for %d minutes.</p><p>%s</p>",
			code, minutes, html.EscapeString(s.clubName)),
		Text: fmt.Sprintf("Your password reset code is %s. It is valid for %d minutes.\n\n%s", code, minutes, s.clubName),
	})
	if err != nil {
		s.codes.Consume(u.Email)
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)
	if len(newPassword) < minPasswordLength {
		return &ValidationError{Msg: fmt.Sprintf("Password must be at least %d characters", minPasswordLength)}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if err := s.codes.Verify(u.Email, strings.TrimSpace(code)); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return err
	}
	s.codes.Consume(u.Email)
	s.log.Info("password reset", "user_id", u.ID)
	return nil
}

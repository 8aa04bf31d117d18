package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/security"

	"github.com/rs/zerolog/log"
)

const (
	msgInvalidCredentials = "Invalid email/username or password."
	msgInvalidResetLink   = "Invalid or expired reset link."
	msgPasswordsMismatch  = "Passwords do not match."
)

// ResetMailer delivers password reset links. Sending is synchronous.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, user *model.User) error
	// Authenticate resolves a token key to its active user. Unknown keys and
	// inactive users return (nil, nil).
	Authenticate(ctx context.Context, key string) (*model.User, error)
	RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) (*dto.PasswordResetResponse, error)
	ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirmRequest) (*dto.MessageResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	hasher security.CredentialHasher
	issuer security.TokenIssuer
	resets security.ResetTokenGenerator
	mailer ResetMailer
	cfg    *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	hasher security.CredentialHasher,
	issuer security.TokenIssuer,
	resets security.ResetTokenGenerator,
	mailer ResetMailer,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		issuer: issuer,
		resets: resets,
		mailer: mailer,
		cfg:    cfg,
	}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	fields := map[string]string{}

	if email == "" {
		fields["email"] = "This field is required."
	} else if exists, err := s.users.EmailExists(ctx, email); err != nil {
		return nil, apierror.Internal("Signup failed", err)
	} else if exists {
		fields["email"] = "A user with this email already exists."
	}

	if username != "" {
		exists, err := s.users.UsernameExists(ctx, username)
		if err != nil {
			return nil, apierror.Internal("Signup failed", err)
		}
		if exists {
			fields["username"] = "A user with this username already exists."
		}
	}

	if len(req.Password) < security.MinPasswordLength {
		fields["password"] = fmt.Sprintf("Ensure this field has at least %d characters.", security.MinPasswordLength)
	} else if req.PasswordConfirm != "" && req.PasswordConfirm != req.Password {
		fields["password_confirm"] = msgPasswordsMismatch
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("Signup failed", fields)
	}

	if username == "" {
		derived, err := s.deriveUsername(ctx, email)
		if err != nil {
			return nil, apierror.Internal("Signup failed", err)
		}
		username = derived
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apierror.Internal("Signup failed", err)
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(req.Name),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      req.Role == "manager" || req.Role == "admin",
		IsSuperuser:  req.Role == "admin",
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Validation("Signup failed", map[string]string{
				"username": "A user with this username or email already exists.",
			})
		}
		return nil, apierror.Internal("Signup failed", err)
	}

	key, err := s.tokenFor(ctx, user)
	if err != nil {
		return nil, apierror.Internal("Signup failed", err)
	}
	log.Info().Str("username", user.Username).Bool("superuser", user.IsSuperuser).Msg("auth: user signed up")

	return &dto.AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    ToUserResponse(user),
		Token:   key,
	}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, apierror.Authentication("Must include email/username and password.")
	}

	user, err := s.authenticate(ctx, login, req.Password)
	if err != nil {
		return nil, &apierror.Error{Kind: apierror.KindAuthentication, Message: "Authentication error occurred.", Cause: err}
	}
	if user == nil || !user.IsActive {
		return nil, apierror.Authentication(msgInvalidCredentials)
	}

	key, err := s.tokenFor(ctx, user)
	if err != nil {
		return nil, apierror.Internal("Login failed", err)
	}
	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("username", user.Username).Msg("auth: could not update last_login")
	} else {
		user.LastLogin = &now
	}
	log.Info().Str("username", user.Username).Msg("auth: login")

	return &dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    ToUserResponse(user),
		Token:   key,
	}, nil
}

// authenticate tries the email account first when login looks like an email,
// then falls back to a username lookup. A nil user means bad credentials.
func (s *authService) authenticate(ctx context.Context, login, password string) (*model.User, error) {
	if strings.Contains(login, "@") {
		u, err := s.users.FindByEmail(ctx, login)
		switch {
		case err == nil && s.hasher.Verify(u.PasswordHash, password):
			return u, nil
		case err != nil && !repository.IsNotFound(err):
			return nil, err
		}
	}
	u, err := s.users.FindByUsername(ctx, login)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, nil
	}
	return u, nil
}

func (s *authService) Logout(ctx context.Context, user *model.User) error {
	if user == nil {
		return apierror.Authentication("Logout failed")
	}
	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		return &apierror.Error{Kind: apierror.KindValidation, Message: "Logout failed", Cause: err}
	}
	log.Info().Str("username", user.Username).Msg("auth: logout")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, nil
	}
	t, err := s.tokens.FindByKey(ctx, key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if t.User == nil || !t.User.IsActive {
		return nil, nil
	}
	return t.User, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) (*dto.PasswordResetResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, apierror.Field("email", "Enter a valid email address.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !repository.IsNotFound(err) {
		return nil, apierror.Internal("Password reset failed", err)
	}
	if user == nil || !user.IsActive {
		return &dto.PasswordResetResponse{
			Success:    false,
			Message:    "No account found with this email address.",
			UserExists: false,
		}, nil
	}

	token, err := s.resets.Make(user)
	if err != nil {
		return nil, apierror.Internal("Password reset failed", err)
	}
	uid := security.EncodeUID(user.ID)

	if s.cfg.PasswordResetDelivery == "email" {
		link := fmt.Sprintf("%s/reset-password/%s/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), uid, token)
		if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
			return nil, apierror.Internal("Failed to send password reset email.", err)
		}
		log.Info().Str("username", user.Username).Msg("auth: password reset mailed")
		return &dto.PasswordResetResponse{
			Success:    true,
			Message:    "Password reset link has been sent to your email.",
			UserExists: true,
		}, nil
	}

	log.Info().Str("username", user.Username).Msg("auth: password reset token issued")
	return &dto.PasswordResetResponse{
		Success:    true,
		Message:    "Password reset token generated.",
		UserExists: true,
		UID:        uid,
		Token:      token,
	}, nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirmRequest) (*dto.MessageResponse, error) {
	if req.NewPassword != req.ConfirmPassword {
		return nil, apierror.Validation(msgPasswordsMismatch, map[string]string{"confirm_password": msgPasswordsMismatch})
	}
	if len(req.NewPassword) < security.MinPasswordLength {
		return nil, apierror.Field("new_password", fmt.Sprintf("Ensure this field has at least %d characters.", security.MinPasswordLength))
	}

	id, err := security.DecodeUID(req.UID)
	if err != nil {
		return nil, apierror.Validation(msgInvalidResetLink, nil)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.Validation(msgInvalidResetLink, nil)
		}
		return nil, apierror.Internal("Password reset failed", err)
	}
	if !s.resets.Check(user, req.Token) {
		return nil, apierror.Validation(msgInvalidResetLink, nil)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, apierror.Internal("Password reset failed", err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apierror.Internal("Password reset failed", err)
	}
	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, apierror.Internal("Password reset failed", err)
	}
	log.Info().Str("username", user.Username).Msg("auth: password reset completed")

	return &dto.MessageResponse{Success: true, Message: "Password has been reset successfully."}, nil
}

// tokenFor returns the user's token, creating it on first use. Losing the
// create race to a concurrent request returns the winner's key.
func (s *authService) tokenFor(ctx context.Context, user *model.User) (string, error) {
	existing, err := s.tokens.FindByUserID(ctx, user.ID)
	if err == nil {
		return existing.Key, nil
	}
	if !repository.IsNotFound(err) {
		return "", fmt.Errorf("find token: %w", err)
	}

	key, err := s.issuer.NewKey()
	if err != nil {
		return "", err
	}
	if err := s.tokens.Create(ctx, &model.Token{Key: key, UserID: user.ID}); err != nil {
		if repository.IsDuplicate(err) {
			if winner, ferr := s.tokens.FindByUserID(ctx, user.ID); ferr == nil {
				return winner.Key, nil
			}
		}
		return "", fmt.Errorf("create token: %w", err)
	}
	return key, nil
}

var usernameUnsafe = regexp.MustCompile(`[^\w.@+-]`)

// deriveUsername builds a free username from the email local-part: jane,
// jane1, jane2, ...
func (s *authService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at >= 0 {
		base = email[:at]
	}
	base = usernameUnsafe.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// normalizeEmail trims and lower-cases the domain part.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

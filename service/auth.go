package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"folio/auth"
	"folio/common"
	"folio/models"
	"folio/repository"
)

// Mailer delivers account email. A nil Mailer disables sending.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type ProfileInput struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

// ClientInfo describes where a session was opened from.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type AuthResult struct {
	User                  *models.User `json:"user"`
	AccessToken           string       `json:"accessToken"`
	RefreshToken          string       `json:"refreshToken,omitempty"`
	AccessTokenExpiresAt  time.Time    `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time    `json:"refreshTokenExpiresAt"`
}

type AuthOptions struct {
	BcryptCost int
	RefreshTTL time.Duration
}

type AuthService struct {
	Base
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	tokens   *auth.TokenManager
	mailer   Mailer
	opts     AuthOptions
	now      func() time.Time
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(b Base, users *repository.UserRepository, sessions *repository.SessionRepository, tokens *auth.TokenManager, mailer Mailer, opts AuthOptions) (*AuthService, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = auth.DefaultCost
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	dummy, err := auth.HashPassword("folio-unknown-user", opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		Base:      b,
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		mailer:    mailer,
		opts:      opts,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Register creates an account and signs it in. The first account becomes
// the admin; later ones are viewers until promoted.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if u, err := s.users.FindByEmail(ctx, in.Email); err != nil {
		return nil, s.fail(ctx, "register", err)
	} else if u != nil {
		return nil, common.Conflict("Email already registered")
	}
	if u, err := s.users.FindByUsername(ctx, in.Username); err != nil {
		return nil, s.fail(ctx, "register", err)
	} else if u != nil {
		return nil, common.Conflict("Username already taken")
	}

	hash, err := auth.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}
	verification, err := auth.RandomToken(32)
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}
	role := models.RoleViewer
	if count == 0 {
		role = models.RoleAdmin
	}

	user := &models.User{
		Email:             in.Email,
		Username:          in.Username,
		Name:              in.Name,
		PasswordHash:      hash,
		Role:              role,
		Active:            true,
		VerificationToken: verification,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.fail(ctx, "register", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "role", role)

	if s.mailer != nil {
		if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, verification); err != nil {
			s.log.WarnContext(ctx, "sending verification email", "user_id", user.ID, "error", err)
		}
	}

	return s.startSession(ctx, user, client)
}

// Login answers unknown emails and wrong passwords with the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput, client ClientInfo) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	if user == nil {
		auth.CheckPassword(in.Password, s.dummyHash)
		return nil, common.ErrInvalidCredentials
	}
	if !auth.CheckPassword(in.Password, user.PasswordHash) {
		s.log.InfoContext(ctx, "login failed", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, common.ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	user.LastLogin = &now

	return s.startSession(ctx, user, client)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, client ClientInfo) (*AuthResult, error) {
	access, accessExp, err := s.tokens.Issue(user.ID, user.Email, user.Username, string(user.Role))
	if err != nil {
		return nil, s.fail(ctx, "issue token", err)
	}
	raw, hash, err := auth.NewRefreshToken()
	if err != nil {
		return nil, s.fail(ctx, "issue token", err)
	}

	session := &models.Session{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.opts.RefreshTTL),
		Active:    true,
		UserAgent: truncate(client.UserAgent, 255),
		IP:        truncate(client.IP, 64),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, s.fail(ctx, "create session", err)
	}

	return &AuthResult{
		User:                  user,
		AccessToken:           access,
		RefreshToken:          raw,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

// RefreshToken issues a new access token for a live session. The refresh
// token itself is not rotated and keeps its original expiry.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidToken
	}
	session, err := s.sessions.FindByTokenHash(ctx, auth.HashToken(refreshToken))
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}
	if session == nil || !session.Active {
		return nil, common.ErrInvalidToken
	}
	if session.Expired(s.now()) {
		return nil, common.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}
	if user == nil {
		return nil, common.ErrInvalidToken
	}
	if !user.Active {
		return nil, common.ErrAccountDisabled
	}

	access, accessExp, err := s.tokens.Issue(user.ID, user.Email, user.Username, string(user.Role))
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}
	return &AuthResult{
		User:                  user,
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout deactivates the session of refreshToken. It reports false when
// there was no active session, which is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}
	ok, err := s.sessions.Deactivate(ctx, auth.HashToken(refreshToken))
	return ok, s.fail(ctx, "logout", err)
}

// LogoutAllSessions returns how many sessions were still active.
func (s *AuthService) LogoutAllSessions(ctx context.Context, userID string) (int64, error) {
	n, err := s.sessions.DeactivateAllForUser(ctx, userID)
	if err != nil {
		return 0, s.fail(ctx, "logout all", err)
	}
	s.log.InfoContext(ctx, "sessions revoked", "user_id", userID, "count", n)
	return n, nil
}

// ChangePassword replaces the password after checking the current one.
// Other sessions stay signed in.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.fail(ctx, "change password", err)
	}
	if user == nil {
		return s.notFound("User")
	}
	if !auth.CheckPassword(in.CurrentPassword, user.PasswordHash) {
		return common.Validation("Current password is incorrect", "currentPassword")
	}

	hash, err := auth.HashPassword(in.NewPassword, s.opts.BcryptCost)
	if err != nil {
		return s.fail(ctx, "change password", err)
	}
	if _, err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return s.fail(ctx, "change password", err)
	}
	s.log.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// VerifyToken returns the claims of a valid access token and nil for
// anything else.
func (s *AuthService) VerifyToken(token string) *auth.Claims {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return claims
}

func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, s.fail(ctx, "cleanup sessions", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	user, err := s.users.FindByVerificationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, s.fail(ctx, "verify email", err)
	}
	if user == nil {
		return nil, common.ErrInvalidToken
	}
	if _, err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, s.fail(ctx, "verify email", err)
	}
	return s.users.FindByID(ctx, user.ID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "me", err)
	}
	if user == nil {
		return nil, s.notFound("User")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	ch := changes{}
	ch.str("name", &user.Name, in.Name)
	ch.str("bio", &user.Bio, in.Bio)
	ch.str("avatar_url", &user.AvatarURL, in.AvatarURL)

	updated, err := s.users.UpdateProfile(ctx, userID, ch)
	if err != nil {
		return nil, s.fail(ctx, "update profile", err)
	}
	if updated == nil {
		return nil, s.notFound("User")
	}
	return updated, nil
}

// truncate shortens s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

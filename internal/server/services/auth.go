// Package services implements the authentication core: credential
// verification, session-token issuance and validation, and the two-phase
// password-reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/opencal/authcore/internal/common"
	"github.com/opencal/authcore/internal/logging"
	"github.com/opencal/authcore/internal/server/auth"
	"github.com/opencal/authcore/internal/server/config"
	"github.com/opencal/authcore/internal/server/mail"
	"github.com/opencal/authcore/internal/server/models"
	"github.com/opencal/authcore/internal/server/repositories/repomanager"
)

// Reset-form password length bounds, exclusive on both ends: a password of
// exactly 3 or exactly 20 characters is rejected. Counted in runes, no
// Unicode normalization.
const (
	minPasswordLength = 3
	maxPasswordLength = 20
)

type AuthService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	mail                 mail.Dispatcher
	logger               logging.Logger
	jwtSecret            []byte
	signingMethod        string
	sessionTokenValidity time.Duration
	resetTokenValidity   time.Duration
	resetURLBase         string
	mailFrom             string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, dispatcher mail.Dispatcher, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                   db,
		repomanager:          m,
		mail:                 dispatcher,
		logger:               logger,
		jwtSecret:            []byte(cfg.SecretKey),
		signingMethod:        cfg.SigningAlgorithm,
		sessionTokenValidity: cfg.SessionTokenValidity,
		resetTokenValidity:   cfg.ResetTokenValidity,
		resetURLBase:         cfg.ResetURLBase,
		mailFrom:             cfg.MailFrom,
	}
}

// Authenticate verifies a username/password pair against the credential
// store. On success it returns the minimal identity projection carrying the
// stored hash; every failure (unknown username, wrong password) comes back
// uniformly as common.ErrNotAuthenticated.
func (s *AuthService) Authenticate(ctx context.Context, creds models.Credentials) (*models.AuthenticatedUser, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotAuthenticated
		}
		return nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(creds.Password, user.PasswordHash) {
		return nil, common.ErrNotAuthenticated
	}

	return &models.AuthenticatedUser{Username: user.Username, PasswordHash: user.PasswordHash}, nil
}

// AuthenticateReset verifies that the supplied email belongs to the given
// username. The plaintext password is deliberately not checked in this mode;
// possession of the mailbox is the second factor. The returned request
// carries the password hash currently in force, which becomes the issued
// token's fingerprint.
func (s *AuthService) AuthenticateReset(ctx context.Context, username, email string) (*models.ResetRequest, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotAuthenticated
		}
		return nil, common.ErrorInternal
	}

	if user.Email != email {
		return nil, common.ErrNotAuthenticated
	}

	return &models.ResetRequest{Username: user.Username, Email: user.Email, PasswordHash: user.PasswordHash}, nil
}

// IssueSession issues a session token for an authenticated identity.
func (s *AuthService) IssueSession(user *models.AuthenticatedUser) (string, error) {
	return auth.GenerateToken(user.Username, user.PasswordHash, s.jwtSecret, s.signingMethod, s.sessionTokenValidity)
}

// resolveToken decodes a token and re-validates it against the store: the
// subject must still exist and the embedded hash must equal the stored one.
// A missing identity or a changed hash both surface as common.ErrTokenStale;
// decode failures propagate classified.
func (s *AuthService) resolveToken(ctx context.Context, token string) (*models.User, error) {

	claims, err := auth.ParseToken(token, s.jwtSecret, s.signingMethod)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenStale
		}
		return nil, common.ErrorInternal
	}

	if user.PasswordHash != claims.HashedPassword {
		return nil, common.ErrTokenStale
	}

	return user, nil
}

// ValidateSession validates a session token and returns the public-safe
// projection of the current user. The password hash never leaves this call.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.CurrentUser, error) {
	user, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return user.Current(), nil
}

// ValidateReset validates a token presented during the reset-redeem phase
// and returns the full identity record, the only validation path permitted
// to see the stored hash. Read-only; the password mutation is a separate
// explicit call.
func (s *AuthService) ValidateReset(ctx context.Context, token string) (*models.User, error) {
	return s.resolveToken(ctx, token)
}

// RequestReset runs the first phase of the password-reset protocol: it
// confirms the username/email pair, issues a reset-scoped token bound to the
// current password hash, and hands the reset link to the mail collaborator.
// The send is fire-and-forget; the call returns independent of delivery.
func (s *AuthService) RequestReset(ctx context.Context, username, email string) (*models.ResetRequest, error) {

	req, err := s.AuthenticateReset(ctx, username, email)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(req.Username, req.PasswordHash, s.jwtSecret, s.signingMethod, s.resetTokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	req.Token = token

	resetURL := s.resetURLBase + "?token=" + url.QueryEscape(token)

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.mail.SendResetLink(ctx, s.mailFrom, req.Email, resetURL); err != nil {
			s.logger.Error(ctx, "reset mail dispatch failed", "username", req.Username, "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "reset token issued", "username", req.Username)

	return req, nil
}

// RedeemReset runs the second phase: it validates the reset token, checks the
// submitted form and commits the new password hash. The redeemed token goes
// stale on its own because its fingerprint no longer matches the new hash.
//
// Rejections (common.ErrValidationRejected) never mutate the store: supplied
// username must equal the token's bound username, the two password fields
// must match, and the password length must satisfy the exclusive bounds.
func (s *AuthService) RedeemReset(ctx context.Context, token, username, password, confirmPassword string) error {

	user, err := s.ValidateReset(ctx, token)
	if err != nil {
		return err
	}

	if username != user.Username {
		return common.ErrValidationRejected
	}
	if password != confirmPassword {
		return common.ErrValidationRejected
	}
	if n := utf8.RuneCountInString(password); n <= minPasswordLength || n >= maxPasswordLength {
		return common.ErrValidationRejected
	}

	if err := s.ChangePassword(ctx, user, password); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset completed", "username", user.Username)

	return nil
}

// ChangePasswordWithToken changes the password of the identity a session
// token belongs to. The submitted form obeys the same rules as the reset
// form: the two password fields must match and the length must satisfy the
// exclusive bounds. Token failures propagate classified; the session token
// itself goes stale once the new hash is committed.
func (s *AuthService) ChangePasswordWithToken(ctx context.Context, token, password, confirmPassword string) error {

	user, err := s.resolveToken(ctx, token)
	if err != nil {
		return err
	}

	if password != confirmPassword {
		return common.ErrValidationRejected
	}
	if n := utf8.RuneCountInString(password); n <= minPasswordLength || n >= maxPasswordLength {
		return common.ErrValidationRejected
	}

	if err := s.ChangePassword(ctx, user, password); err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "username", user.Username)

	return nil
}

// ChangePassword hashes the new plaintext and commits it to the credential
// store. Every token fingerprinted with the previous hash is implicitly
// invalidated by this write.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, newPassword string) error {

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)

	if err := repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenStale
		}
		return common.ErrorInternal
	}

	user.PasswordHash = hash

	return nil
}

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yoapunto/yoapunto-server/cache"
	"github.com/yoapunto/yoapunto-server/config"
	mw "github.com/yoapunto/yoapunto-server/middleware"
	"github.com/yoapunto/yoapunto-server/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for any authentication failure: unknown
// email, wrong password, or inactive account. Callers must not be able to
// tell which.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrInvalidToken covers every token validation failure: bad signature,
// expired, wrong kind, already consumed, or subject no longer active.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// ErrAccountNotFound is returned when an operation references an account id
// that does not resolve to an active account.
var ErrAccountNotFound = errors.New("auth: account not found")

// dummyDigest is a valid bcrypt digest compared against on the unknown-email
// path so response timing does not reveal whether an account exists.
const dummyDigest = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

const revokedKeyPrefix = "revoked:"

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements the token lifecycle: login, refresh, revocation, and
// the single-use password-reset / email-verification workflows.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	sec    config.SecurityConfig
	logger *zap.Logger
}

// New creates an auth Service.
func New(db *gorm.DB, c cache.Cache, sec config.SecurityConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, sec: sec, logger: logger}
}

func (s *Service) bcryptCost() int {
	if s.sec.BcryptCost > 0 {
		return s.sec.BcryptCost
	}
	return bcrypt.DefaultCost
}

// HashPassword produces a bcrypt digest for storage.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate verifies the email/password pair against an active account and
// issues an access/refresh token pair. Unknown email and wrong password fail
// identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (TokenPair, error) {
	var acc model.Account
	err := s.db.WithContext(ctx).
		Where("email_address = ? AND active = ?", email, true).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyDigest), []byte(password))
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordDigest), []byte(password)); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, err := mw.GenerateToken(acc.ID, mw.TokenTypeAccess, s.sec.JWTSecret, s.sec.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := mw.GenerateToken(acc.ID, mw.TokenTypeRefresh, s.sec.JWTSecret, s.sec.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	// Best-effort; login must not fail on a timestamp update.
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&acc).Update("last_login_at", now).Error; err != nil {
		s.logger.Warn("last_login_at update failed", zap.Int64("account_id", acc.ID), zap.Error(err))
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := mw.ParseToken(refreshToken, mw.TokenTypeRefresh, s.sec.JWTSecret)
	if err != nil {
		return "", ErrInvalidToken
	}

	revoked, err := s.cache.Exists(ctx, revokedKeyPrefix+refreshToken)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}

	var acc model.Account
	if err := s.db.WithContext(ctx).
		Where("id = ? AND active = ?", claims.AccountID, true).
		First(&acc).Error; err != nil {
		return "", ErrInvalidToken
	}

	return mw.GenerateToken(acc.ID, mw.TokenTypeAccess, s.sec.JWTSecret, s.sec.AccessTTL)
}

// Revoke denylists a refresh token for its remaining lifetime.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := mw.ParseToken(refreshToken, mw.TokenTypeRefresh, s.sec.JWTSecret)
	if err != nil {
		return ErrInvalidToken
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+refreshToken, "1", ttl)
}

// hashToken digests an opaque reset/verification token for storage and lookup.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// issueToken creates a single-use AuthToken row and returns the plaintext.
func (s *Service) issueToken(ctx context.Context, accountID int64, kind string, ttl time.Duration) (string, error) {
	plaintext := uuid.NewString()
	row := model.AuthToken{
		AccountID: accountID,
		Kind:      kind,
		TokenHash: hashToken(plaintext),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return plaintext, nil
}

// RequestPasswordReset creates a single-use reset token for the account with
// the given email. If no active account matches, it returns an empty token
// and no error so the HTTP layer can answer identically either way.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var acc model.Account
	err := s.db.WithContext(ctx).
		Where("email_address = ? AND active = ?", email, true).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.issueToken(ctx, acc.ID, model.TokenKindReset, s.sec.ResetTokenTTL)
}

// consumeToken marks the token row consumed and returns it. The conditional
// UPDATE makes consumption atomic: of two concurrent confirmations, exactly
// one wins.
func (s *Service) consumeToken(tx *gorm.DB, token, kind string) (*model.AuthToken, error) {
	var row model.AuthToken
	err := tx.Where("token_hash = ? AND kind = ?", hashToken(token), kind).First(&row).Error
	if err != nil {
		return nil, ErrInvalidToken
	}
	if row.ConsumedAt != nil || time.Now().After(row.ExpiresAt) {
		return nil, ErrInvalidToken
	}
	now := time.Now()
	res := tx.Model(&model.AuthToken{}).
		Where("id = ? AND consumed_at IS NULL", row.ID).
		Update("consumed_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}
	row.ConsumedAt = &now
	return &row, nil
}

// ConfirmPasswordReset consumes a reset token and replaces the account's
// password digest in one transaction.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	digest, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.consumeToken(tx, token, model.TokenKindReset)
		if err != nil {
			return err
		}
		return tx.Model(&model.Account{}).
			Where("id = ?", row.AccountID).
			Update("password_digest", digest).Error
	})
}

// RequestEmailVerification creates a single-use verification token for the
// given active account.
func (s *Service) RequestEmailVerification(ctx context.Context, accountID int64) (string, error) {
	var acc model.Account
	if err := s.db.WithContext(ctx).
		Where("id = ? AND active = ?", accountID, true).
		First(&acc).Error; err != nil {
		return "", ErrAccountNotFound
	}
	return s.issueToken(ctx, acc.ID, model.TokenKindVerify, s.sec.VerifyTokenTTL)
}

// ConfirmEmailVerification consumes a verification token and marks the
// account's email verified.
func (s *Service) ConfirmEmailVerification(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.consumeToken(tx, token, model.TokenKindVerify)
		if err != nil {
			return err
		}
		return tx.Model(&model.Account{}).
			Where("id = ?", row.AccountID).
			Update("email_verified", true).Error
	})
}

// ChangePassword verifies the current password and stores a new digest.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, current, newPassword string) error {
	var acc model.Account
	if err := s.db.WithContext(ctx).
		Where("id = ? AND active = ?", accountID, true).
		First(&acc).Error; err != nil {
		return ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordDigest), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	digest, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&acc).Update("password_digest", digest).Error
}

// PurgeExpiredTokens deletes reset/verification rows that can never validate
// again. Called periodically from the scheduler.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR consumed_at IS NOT NULL", time.Now()).
		Delete(&model.AuthToken{})
	return res.RowsAffected, res.Error
}

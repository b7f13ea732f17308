// Package postgres implements providers.Remote on a self-hosted PostgreSQL
// database through gorm: bcrypt password hashes, HS256 access tokens and
// emailed verification codes.
package postgres

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/providers"
)

const (
	upstreamName    = "postgres"
	codeTTL         = time.Hour
	minPasswordSize = 6
)

// CodeSender delivers verification codes to users.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogCodeSender writes codes to the log; suitable for local development only.
type LogCodeSender struct {
	Logger *slog.Logger
}

// SendVerificationCode logs the code.
func (s LogCodeSender) SendVerificationCode(ctx context.Context, email, code string) error {
	logging.Info(logging.FromContext(ctx, s.Logger), "verification code issued", "email", email, "code", code)
	return nil
}

// Config controls the database connection and token signing.
type Config struct {
	DSN        string
	JWTSecret  string
	TokenTTL   time.Duration
	CodeSender CodeSender
	Logger     *slog.Logger
}

// Store is a providers.Remote backed by PostgreSQL.
type Store struct {
	db     *gorm.DB
	tokens *tokenIssuer
	codes  CodeSender
	logger *slog.Logger
	now    func() time.Time
}

var _ providers.Remote = (*Store)(nil)

// Open connects to cfg.DSN and migrates the schema.
func Open(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres: DSN is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return New(db, cfg)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB, cfg Config) (*Store, error) {
	tokens, err := newTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	codes := cfg.CodeSender
	if codes == nil {
		codes = LogCodeSender{Logger: cfg.Logger}
	}
	return &Store{db: db, tokens: tokens, codes: codes, logger: cfg.Logger, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func authError(msg string) error {
	return &providers.APIError{
		Upstream:   upstreamName,
		StatusCode: http.StatusBadRequest,
		Message:    msg,
		Err:        providers.ErrUnauthenticated,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// authorize checks token and that it belongs to userID (when given).
func (s *Store) authorize(ctx context.Context, token, userID string) (*claims, error) {
	c, err := s.tokens.parse(token)
	if err != nil {
		return nil, err
	}
	if userID != "" && c.Subject != userID {
		return nil, fmt.Errorf("%w: token subject mismatch", providers.ErrUnauthenticated)
	}
	var revoked int64
	if err := s.db.WithContext(ctx).Model(&revokedTokenRow{}).Where("token_id = ?", c.ID).Count(&revoked).Error; err != nil {
		return nil, err
	}
	if revoked > 0 {
		return nil, fmt.Errorf("%w: token revoked", providers.ErrUnauthenticated)
	}
	return c, nil
}

func (s *Store) issueSession(u userRow) (profile.AuthSession, error) {
	token, _, err := s.tokens.issue(u.ID, u.Email)
	if err != nil {
		return profile.AuthSession{}, err
	}
	return profile.AuthSession{
		AccessToken: token,
		UserID:      u.ID,
		Email:       u.Email,
		Metadata:    u.Metadata,
	}, nil
}

// SignIn checks the password and returns a fresh session.
func (s *Store) SignIn(ctx context.Context, email, password string) (profile.AuthSession, error) {
	var u userRow
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.AuthSession{}, authError("invalid login credentials")
	}
	if err != nil {
		return profile.AuthSession{}, err
	}
	if !checkPassword(u.PasswordHash, password) {
		return profile.AuthSession{}, authError("invalid login credentials")
	}
	if !u.Verified {
		return profile.AuthSession{}, authError("email not confirmed")
	}
	return s.issueSession(u)
}

// SignUp creates an unverified account and sends its verification code.
// It never returns a session; the caller proceeds to verification.
func (s *Store) SignUp(ctx context.Context, req providers.SignUpRequest) (*profile.AuthSession, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < minPasswordSize {
		return nil, &providers.APIError{Upstream: upstreamName, StatusCode: http.StatusUnprocessableEntity, Message: "email and a password of at least 6 characters are required"}
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	code, err := newVerificationCode()
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(codeTTL)
	meta := map[string]string{"user_type": string(req.UserType)}
	if req.Name != "" {
		meta["name"] = req.Name
	}
	if req.Language != "" {
		meta["language"] = req.Language
	}
	u := userRow{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     hash,
		VerificationCode: code,
		CodeExpiresAt:    &expires,
		Metadata:         meta,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&userRow{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &providers.APIError{Upstream: upstreamName, StatusCode: http.StatusUnprocessableEntity, Message: "user already registered"}
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.codes.SendVerificationCode(ctx, email, code); err != nil {
		logging.Warn(logging.FromContext(ctx, s.logger), "verification code delivery failed", logging.FieldUpstream, upstreamName, "err", err)
	}
	return nil, nil
}

// Verify marks the account verified when code matches and returns a session.
func (s *Store) Verify(ctx context.Context, email, code string) (profile.AuthSession, error) {
	var u userRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authError("invalid verification code")
			}
			return err
		}
		if u.Verified {
			return nil
		}
		if u.VerificationCode == "" || u.CodeExpiresAt == nil || s.now().After(*u.CodeExpiresAt) {
			return authError("verification code expired")
		}
		if subtle.ConstantTimeCompare([]byte(u.VerificationCode), []byte(strings.TrimSpace(code))) != 1 {
			return authError("invalid verification code")
		}
		u.Verified = true
		u.VerificationCode = ""
		u.CodeExpiresAt = nil
		return tx.Model(&userRow{}).Where("id = ?", u.ID).Updates(map[string]any{
			"verified":          true,
			"verification_code": "",
			"code_expires_at":   nil,
		}).Error
	})
	if err != nil {
		return profile.AuthSession{}, err
	}
	return s.issueSession(u)
}

// SignOut revokes the token so later calls with it fail.
func (s *Store) SignOut(ctx context.Context, accessToken string) error {
	c, err := s.tokens.parse(accessToken)
	if err != nil {
		return nil
	}
	row := revokedTokenRow{TokenID: c.ID}
	if c.ExpiresAt != nil {
		row.ExpiresAt = c.ExpiresAt.Time
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// GetProfile reads the profile for userID.
func (s *Store) GetProfile(ctx context.Context, token, userID string) (profile.Profile, error) {
	if _, err := s.authorize(ctx, token, userID); err != nil {
		return profile.Profile{}, err
	}
	var row profileRow
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.Profile{}, providers.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, err
	}
	return profileFromRow(row), nil
}

// UpsertProfile inserts the profile or overwrites every column.
func (s *Store) UpsertProfile(ctx context.Context, token string, p profile.Profile) error {
	if _, err := s.authorize(ctx, token, p.ID); err != nil {
		return err
	}
	row := profileToRow(p)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// CreateChatSession is idempotent per (user, correlation id).
func (s *Store) CreateChatSession(ctx context.Context, token, userID string, sess chat.Session) (string, error) {
	if _, err := s.authorize(ctx, token, userID); err != nil {
		return "", err
	}
	db := s.db.WithContext(ctx)
	var existing sessionRow
	err := db.Where("user_id = ? AND external_id = ?", userID, sess.ID).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	created := sess.Date
	if created.IsZero() {
		created = s.now()
	}
	row := sessionRow{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExternalID: sess.ID,
		Title:      sess.Title,
		Snippet:    sess.Snippet,
		CreatedAt:  created.UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

// ListChatSessions returns the user's sessions, most recent first.
func (s *Store) ListChatSessions(ctx context.Context, token, userID string) ([]chat.Session, error) {
	if _, err := s.authorize(ctx, token, userID); err != nil {
		return nil, err
	}
	var rows []sessionRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]chat.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toSession())
	}
	return out, nil
}

// AppendChatMessage stores m under a session owned by the token's user.
func (s *Store) AppendChatMessage(ctx context.Context, token, remoteSessionID string, m chat.Message) error {
	c, err := s.authorize(ctx, token, "")
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	var owned int64
	if err := db.Model(&sessionRow{}).Where("id = ? AND user_id = ?", remoteSessionID, c.Subject).Count(&owned).Error; err != nil {
		return err
	}
	if owned == 0 {
		return providers.ErrNotFound
	}
	created := m.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	return db.Create(&messageRow{
		SessionID:              remoteSessionID,
		Sender:                 string(m.Sender),
		Content:                m.Text,
		Players:                m.Players,
		IsSatisfactionQuestion: m.IsSatisfactionQuestion,
		CreatedAt:              created.UTC(),
	}).Error
}

// DeleteChatSessions removes every session and message for the user.
func (s *Store) DeleteChatSessions(ctx context.Context, token, userID string) error {
	if _, err := s.authorize(ctx, token, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&sessionRow{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("session_id IN (?)", ids).Delete(&messageRow{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&sessionRow{}).Error
	})
}

// GetPreferences reads the preferences row; missing rows yield providers.ErrNotFound.
func (s *Store) GetPreferences(ctx context.Context, token, userID string) (profile.Preferences, error) {
	if _, err := s.authorize(ctx, token, userID); err != nil {
		return profile.Preferences{}, err
	}
	var row preferencesRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.Preferences{}, providers.ErrNotFound
	}
	if err != nil {
		return profile.Preferences{}, err
	}
	return preferencesFromRow(row), nil
}

// CreatePreferences inserts the preferences row.
func (s *Store) CreatePreferences(ctx context.Context, token string, prefs profile.Preferences) error {
	if _, err := s.authorize(ctx, token, prefs.UserID); err != nil {
		return err
	}
	row := preferencesToRow(prefs)
	return s.db.WithContext(ctx).Create(&row).Error
}

// UpdatePreferences overwrites the preferences row.
func (s *Store) UpdatePreferences(ctx context.Context, token string, prefs profile.Preferences) error {
	if _, err := s.authorize(ctx, token, prefs.UserID); err != nil {
		return err
	}
	row := preferencesToRow(prefs)
	res := s.db.WithContext(ctx).Model(&preferencesRow{}).Where("user_id = ?", prefs.UserID).
		Select("language", "theme", "favorite_players", "updated_at").Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return providers.ErrNotFound
	}
	return nil
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	repo "github.com/oksasatya/idol-catalog/internal/domain/repository"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

// Principal is the authenticated identity handed to the access rules.
type Principal struct {
	UserID       int64    `json:"user_id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
	SessionID    string   `json:"-"`
}

func (p *Principal) HasRole(role string) bool {
	return p != nil && entity.HasRole(p.Roles, role)
}

type AuthService struct {
	Users  repo.UserRepository
	Redis  *redis.Client
	Tokens *helpers.SessionTokens
	Logger *logrus.Logger
	TTL    time.Duration
}

func NewAuthService(users repo.UserRepository, rdb *redis.Client, tokens *helpers.SessionTokens, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Redis: rdb, Tokens: tokens, Logger: logger, TTL: tokens.TTL}
}

// Session is the issued login session.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

func sessionKey(sid string) string {
	return "user:session:" + sid
}

// LoadUser adapts the stored account into a Principal. It never hashes or
// compares passwords.
func (s *AuthService) LoadUser(ctx context.Context, username string) (*Principal, error) {
	u, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrPrincipalNotFound)
	}
	return &Principal{
		UserID:       u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		Roles:        append([]string(nil), u.Roles...),
	}, nil
}

// Login verifies the credentials and opens a server-side session.
// Unknown users and wrong passwords both yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Principal, Session, error) {
	p, err := s.LoadUser(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, Session{}, domain.ErrUnauthorized
		}
		return nil, Session{}, err
	}
	if !helpers.CompareHashAndPassword(p.PasswordHash, password) {
		return nil, Session{}, domain.ErrUnauthorized
	}
	if s.Redis == nil {
		return nil, Session{}, fmt.Errorf("session store: %w", domain.ErrUnavailable)
	}

	sid := uuid.NewString()
	token, exp, err := s.Tokens.Sign(p.UserID, sid)
	if err != nil {
		return nil, Session{}, err
	}
	key := sessionKey(sid)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    strconv.FormatInt(p.UserID, 10),
		"username":   p.Username,
		"roles":      strings.Join(p.Roles, ","),
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Error("redis session write failed")
		}
		return nil, Session{}, err
	}
	p.SessionID = sid
	return p, Session{Token: token, ExpiresAt: exp}, nil
}

// Session resolves a session token. Unknown, expired or revoked sessions
// yield domain.ErrUnauthorized.
func (s *AuthService) Session(ctx context.Context, token string) (*Principal, error) {
	if token == "" || s.Redis == nil {
		return nil, domain.ErrUnauthorized
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(claims.SessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data["user_id"] != strconv.FormatInt(claims.UserID(), 10) {
		return nil, domain.ErrUnauthorized
	}
	var roles []string
	if data["roles"] != "" {
		roles = strings.Split(data["roles"], ",")
	}
	return &Principal{
		UserID:    claims.UserID(),
		Username:  data["username"],
		Roles:     roles,
		SessionID: claims.SessionID,
	}, nil
}

// Logout revokes the server-side session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.Redis == nil {
		return nil
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	return s.Redis.Del(ctx, sessionKey(claims.SessionID)).Err()
}

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"evtickets/entity"
	"evtickets/internal/config"
	"evtickets/lib/apperr"
	"evtickets/lib/sl"
)

const cachePrefix = "idtoken:"

// Provider is the part of the Firebase Auth client the service uses.
type Provider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
}

// Auth resolves bearer tokens and accounts against the identity provider.
// Verified tokens are cached in Redis when a cache is set.
type Auth struct {
	provider   Provider
	cache      *redis.Client
	ttl        time.Duration
	log        *slog.Logger
	now        func() time.Time
	isNotFound func(error) bool
}

func NewFirebaseClient(ctx context.Context, conf config.FirebaseConfig) (*fbauth.Client, error) {
	var fbConf *firebase.Config
	if conf.ProjectID != "" {
		fbConf = &firebase.Config{ProjectID: conf.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConf, option.WithCredentialsFile(conf.CredentialsFile))
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

func New(provider Provider, log *slog.Logger) *Auth {
	return &Auth{
		provider:   provider,
		log:        log.With(sl.Module("auth")),
		now:        time.Now,
		isNotFound: fbauth.IsUserNotFound,
	}
}

func (a *Auth) SetCache(cache *redis.Client, ttl time.Duration) {
	a.cache = cache
	a.ttl = ttl
}

func (a *Auth) UserByToken(ctx context.Context, token string) (*entity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Unauthenticated("token not found")
	}
	if a.provider == nil {
		return nil, apperr.Internal("identity provider not connected", nil)
	}

	key := cacheKey(token)
	if identity := a.cached(ctx, key); identity != nil {
		return identity, nil
	}

	verified, err := a.provider.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "invalid token", Err: err}
	}
	identity := &entity.Identity{Uid: verified.UID}
	if email, ok := verified.Claims["email"].(string); ok {
		identity.Email = email
	}

	a.store(ctx, key, identity, time.Unix(verified.Expires, 0))
	return identity, nil
}

func (a *Auth) UserByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	if a.provider == nil {
		return nil, apperr.Internal("identity provider not connected", nil)
	}
	record, err := a.provider.GetUserByEmail(ctx, email)
	return a.identity(record, err)
}

func (a *Auth) UserById(ctx context.Context, uid string) (*entity.Identity, error) {
	if a.provider == nil {
		return nil, apperr.Internal("identity provider not connected", nil)
	}
	record, err := a.provider.GetUser(ctx, uid)
	return a.identity(record, err)
}

func (a *Auth) identity(record *fbauth.UserRecord, err error) (*entity.Identity, error) {
	if err != nil {
		if a.isNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("identity lookup", err)
	}
	if record == nil || record.UserInfo == nil {
		return nil, apperr.NotFound("user not found")
	}
	return &entity.Identity{Uid: record.UID, Email: record.Email}, nil
}

func (a *Auth) cached(ctx context.Context, key string) *entity.Identity {
	if a.cache == nil {
		return nil
	}
	value, err := a.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			a.log.Warn("token cache read", sl.Err(err))
		}
		return nil
	}
	var identity entity.Identity
	if err = json.Unmarshal([]byte(value), &identity); err != nil || identity.Uid == "" {
		a.log.Warn("token cache decode", sl.Err(err))
		return nil
	}
	return &identity
}

// store keeps the identity until the token expires or the configured ttl ends, whichever is first.
func (a *Auth) store(ctx context.Context, key string, identity *entity.Identity, expires time.Time) {
	if a.cache == nil {
		return
	}
	ttl := expires.Sub(a.now())
	if a.ttl > 0 && a.ttl < ttl {
		ttl = a.ttl
	}
	if ttl <= 0 {
		return
	}
	value, err := json.Marshal(identity)
	if err != nil {
		return
	}
	if err = a.cache.Set(ctx, key, string(value), ttl).Err(); err != nil {
		a.log.Warn("token cache write", sl.Err(err))
	}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cachePrefix + hex.EncodeToString(sum[:])
}

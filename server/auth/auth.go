// Package auth issues and verifies the access tokens used by the HTTP API.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/gatherly/gatherly/store"
)

const (
	// Issuer is the issuer claim of every access token.
	Issuer = "gatherly"
	// AccessTokenDuration is the lifetime of an access token.
	AccessTokenDuration = 7 * 24 * time.Hour
)

var ErrUnauthenticated = errors.New("unauthenticated")

// ContextKey is the type for context values set by the authenticator.
type ContextKey int

const (
	// UserContextKey holds the authenticated *store.User.
	UserContextKey ContextKey = iota
	// UserIDContextKey holds the authenticated user ID.
	UserIDContextKey
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int32 `json:"user_id"`
}

// Authenticator resolves Authorization headers to users.
type Authenticator struct {
	store  *store.Store
	secret []byte
}

// NewAuthenticator creates an authenticator backed by the given store.
func NewAuthenticator(store *store.Store, secret string) *Authenticator {
	return &Authenticator{store: store, secret: []byte(secret)}
}

// SignToken issues an access token for the user.
func (a *Authenticator) SignToken(user *store.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
		UserID: user.ID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Authenticate resolves an Authorization header to a user. The header must
// carry a bearer access token.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) (*store.User, error) {
	if authHeader == "" {
		return nil, errors.Wrap(ErrUnauthenticated, "missing authorization header")
	}
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return nil, errors.Wrap(ErrUnauthenticated, "malformed authorization header")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, errors.Wrap(ErrUnauthenticated, err.Error())
	}

	user, err := a.store.GetUser(ctx, &store.FindUser{ID: &claims.UserID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if user == nil || user.RowStatus == store.Archived {
		return nil, errors.Wrap(ErrUnauthenticated, "user not found")
	}
	return user, nil
}

// SetUserInContext stores the authenticated user in the context.
func SetUserInContext(ctx context.Context, user *store.User) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, user)
	return context.WithValue(ctx, UserIDContextKey, user.ID)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*store.User)
	return user, ok
}

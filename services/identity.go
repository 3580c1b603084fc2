package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/models"
)

const tokenTTL = 30 * 24 * time.Hour

// Identity resolves bearer credentials to live users. Tokens are HS256 JWTs
// carrying a user_id claim.
type Identity struct {
	db     *gorm.DB
	secret []byte
	now    func() time.Time
}

func NewIdentity(db *gorm.DB, secret string, now func() time.Time) *Identity {
	if now == nil {
		now = time.Now
	}
	return &Identity{db: db, secret: []byte(secret), now: now}
}

// IssueToken signs a token for user. Registration and login live elsewhere;
// this is used by tooling and tests.
func (i *Identity) IssueToken(user models.User) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(i.secret)
}

// Resolve accepts either a raw token or an "Authorization" header value.
func (i *Identity) Resolve(ctx context.Context, credential string) (models.User, error) {
	raw := strings.TrimSpace(credential)
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		raw = strings.TrimSpace(after)
	}
	if raw == "" {
		return models.User{}, ErrUnauthenticated
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return models.User{}, &Error{Kind: KindUnauthenticated, Code: ErrUnauthenticated.Code, Message: "Invalid or expired token.", Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, ErrUnauthenticated
	}
	// JSON numbers decode as float64.
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return models.User{}, ErrUnauthenticated
	}

	var user models.User
	err = i.db.WithContext(ctx).Scopes(models.Live).First(&user, uint(rawID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUnauthenticated
	}
	if err != nil {
		return models.User{}, Internal(err)
	}
	return user, nil
}

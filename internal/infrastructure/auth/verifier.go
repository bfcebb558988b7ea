package auth

import (
	"context"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"

	"balikin/pkg/errors"
)

// Identity is what a verified token resolves to.
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// TokenVerifier checks a bearer token and resolves the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// FirebaseVerifier validates Firebase ID tokens. Used with the firestore
// storage driver.
type FirebaseVerifier struct {
	client *firebaseauth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to initialize auth client", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	identity := &Identity{UserID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		identity.Username = name
	}
	return identity, nil
}

// DevVerifier issues and validates HS256 tokens for local development with
// the in-memory storage driver. Not for production use.
type DevVerifier struct {
	secret []byte
	expiry time.Duration
}

func NewDevVerifier(secret string, expiry time.Duration) *DevVerifier {
	return &DevVerifier{secret: []byte(secret), expiry: expiry}
}

type devClaims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Issue mints a signed token for the given user.
func (v *DevVerifier) Issue(userID, email, username string) (string, error) {
	now := time.Now()
	claims := devClaims{
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", errors.Internal("Failed to sign token", err)
	}
	return signed, nil
}

func (v *DevVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	claims := &devClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("Unexpected signing method", nil)
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	if claims.Subject == "" {
		return nil, errors.Unauthorized("Token has no subject", nil)
	}

	return &Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
	}, nil
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/repos"
	"github.com/brown2020/ikigaifinder/internal/types"
)

// AuthService exchanges an identity-provider token for a session cookie and
// resolves session tokens back into request identity.
type AuthService interface {
	// StartSession verifies idToken, upserts the user and mints a session
	// token. An empty idToken starts an anonymous session with a fresh user
	// row, so the wizard works without signing in.
	StartSession(ctx context.Context, idToken string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetSessionTTL() time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// idTokenClaims is the subset of the identity provider's JWT we consume.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	jwtSecretKey  string
	idTokenSecret string
	sessionTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	idTokenSecret string,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		jwtSecretKey:  jwtSecretKey,
		idTokenSecret: idTokenSecret,
		sessionTTL:    sessionTTL,
	}
}

func (as *authService) StartSession(ctx context.Context, idToken string) (string, *types.User, error) {
	user, err := as.resolveUser(ctx, strings.TrimSpace(idToken))
	if err != nil {
		return "", nil, err
	}

	token, err := as.generateSessionToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, user, nil
}

func (as *authService) resolveUser(ctx context.Context, idToken string) (*types.User, error) {
	if idToken == "" {
		anon := &types.User{
			ID:          uuid.New(),
			ExternalUID: "anon:" + uuid.NewString(),
		}
		created, err := as.userRepo.Create(ctx, nil, []*types.User{anon})
		if err != nil {
			return nil, fmt.Errorf("failed to create anonymous user: %w", err)
		}
		return created[0], nil
	}

	claims := &idTokenClaims{}
	parsed, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.idTokenSecret), nil
	})
	if err != nil || !parsed.Valid {
		as.log.Warn("Rejected id token", "error", err)
		return nil, apierr.New(http.StatusUnauthorized, "invalid_id_token", fmt.Errorf("invalid id token"))
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_id_token", fmt.Errorf("id token missing subject"))
	}

	user := &types.User{
		ID:          uuid.New(),
		ExternalUID: claims.Subject,
		Email:       strings.ToLower(strings.TrimSpace(claims.Email)),
		DisplayName: strings.TrimSpace(claims.Name),
		PhotoURL:    strings.TrimSpace(claims.Picture),
	}
	stored, err := as.userRepo.Upsert(ctx, nil, user)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return stored, nil
}

func (as *authService) generateSessionToken(user *types.User) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*sessionClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired session token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID}), nil
}

func (as *authService) GetSessionTTL() time.Duration {
	return as.sessionTTL
}

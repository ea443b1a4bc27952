package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/api/transport"
	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/httpcontext"
)

const (
	SessionHeader  = "X-Session-ID"
	resolveTimeout = 3 * time.Second
)

// SessionResolver looks up a server-side session acquired through login.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Claims is the subset of the provider's access token the API relies on.
type Claims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// JWTAuth accepts a provider-signed bearer token, or a session id issued by
// the login endpoint when sessions is non-nil.
func JWTAuth(secret string, sessions SessionResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			identity, err := authenticate(ctx, secret, sessions)
			if err != nil {
				logger.Warn("request not authenticated",
					zap.ByteString("path", ctx.Path()),
					zap.Error(err))
				unauthorized(ctx)
				return
			}

			httpcontext.SetIdentity(ctx, identity)
			ctx.Request.Header.Set("X-User-ID", identity.UserID)
			next(ctx)
		}
	}
}

func authenticate(ctx *fasthttp.RequestCtx, secret string, sessions SessionResolver) (domain.Identity, error) {
	if tokenString := extractToken(ctx); tokenString != "" {
		return ParseToken(tokenString, secret)
	}
	if sessionID := strings.TrimSpace(string(ctx.Request.Header.Peek(SessionHeader))); sessionID != "" && sessions != nil {
		resolveCtx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()
		session, err := sessions.Resolve(resolveCtx, sessionID)
		if err != nil {
			return domain.Identity{}, err
		}
		return session.Caller(), nil
	}
	return domain.Identity{}, errors.New("missing credentials")
}

// ParseToken validates an HS256 access token and builds the caller identity from its claims.
func ParseToken(tokenString, secret string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Identity{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Identity{}, errors.New("token has no subject")
	}
	return domain.Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		FullName:    claims.UserMetadata.FullName,
		AvatarURL:   claims.UserMetadata.AvatarURL,
		AccessToken: tokenString,
	}, nil
}

func unauthorized(ctx *fasthttp.RequestCtx) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), transport.ErrorBody{Message: "authentication required"}, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

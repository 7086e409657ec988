package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionCookieName is the auth token cookie checked on admin routes.
const SessionCookieName = "authToken"

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 24 * time.Hour

type operatorKeyType string

// OperatorKey carries the authenticated operator name in the request context.
const OperatorKey operatorKeyType = "authenticatedOperator"

// Claims is the session token payload.
type Claims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// IssueSessionCookie signs a session token for operator and wraps it in the
// site-wide, 1-day cookie the admin routes expect.
func IssueSessionCookie(jwtSecret, operator string, now time.Time) (*http.Cookie, error) {
	claims := Claims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// RequireSession gates admin routes on a valid session cookie. Requests
// without one get 401; the route guard is a pure function of session
// presence and knows nothing about the identity provider behind the token.
func RequireSession(jwtSecret string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				log.Warn("admin request without session cookie", zap.String("path", r.URL.Path))
				unauthorized(w)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid || claims.Operator == "" {
				log.Warn("admin request with invalid session token",
					zap.String("path", r.URL.Path), zap.Error(err))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), OperatorKey, claims.Operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}

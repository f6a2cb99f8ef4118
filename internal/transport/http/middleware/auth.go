package middleware

import (
	"context"
	"net/http"
	"strings"

	"attendly/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth resolves a bearer token into a UserContext. The token alone is not
// enough: the user must still exist and be active, so a deactivated
// account loses access immediately rather than at token expiry. Requests
// without a valid token pass through unauthenticated; handlers decide
// whether that is acceptable.
func Auth(secret string, users *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindUserByID(r.Context(), claims.UserID)
			if err != nil || !user.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, auth.UserContext{
				UserID: user.ID,
				Name:   user.Name,
				Role:   user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

package server

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"context"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth validates the bearer token and stores its claims in the
// request context.
func RequireAuth(issuer *auth.TokenIssuer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := issuer.Validate(token)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *auth.CustomClaims {
	claims, _ := r.Context().Value(claimsKey).(*auth.CustomClaims)
	return claims
}

func callerID(r *http.Request) domain.UserID {
	return domain.UserID(claimsFrom(r).UserID)
}

func claimsUserID(claims *auth.CustomClaims) domain.UserID {
	return domain.UserID(claims.UserID)
}

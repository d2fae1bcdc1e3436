package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
)

// Session resolves the visitor session id from cookieName and issues a new one
// when the cookie is missing or malformed.
func Session(cookieName string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Session")
			defer span.End()

			var id uuid.UUID
			cookie, err := r.Cookie(cookieName)
			if err == nil {
				id, err = uuid.Parse(cookie.Value)
			}
			if err != nil || id == uuid.Nil {
				id = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id.String(),
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			logger := zerolog.Ctx(c).With().Str(constants.KeySessionID, id.String()).Logger()
			c = session.AttachSessionID(logger.WithContext(c), id)
			logger.Trace().Msg("attached session id to context")

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/token"
)

// Authenticate verifies a bearer token when one is present and attaches its
// claims. Requests without a token pass through anonymously.
func Authenticate(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Authenticate")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(constants.KeyTag, "middleware Authenticate").Logger()

			authorization := strings.TrimSpace(r.Header.Get(inHttp.HeaderAuthorization))
			if authorization == "" {
				logger.Trace().Msg("no authorization header continuing anonymously")
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			scheme, bearer, ok := strings.Cut(authorization, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				otel.RecordError(errors.ErrTokenInvalid, span)
				logger.Error().Err(errors.ErrTokenInvalid).Msg(errors.ErrTokenInvalid.Error())
				inHttp.WriteErrorResponse(c, w, errors.ErrTokenInvalid)
				return
			}

			claims, err := token.VerifyToken(c, secretKey, strings.TrimSpace(bearer))
			if err != nil {
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}

			logger = logger.With().Str(constants.KeyUserID, claims.Subject).Logger()
			c = token.AttachClaims(logger.WithContext(c), claims)
			logger.Trace().Msg("attached claims to context")

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		if token.ClaimsFromContext(c) == nil {
			zerolog.Ctx(c).Error().Err(errors.ErrEmptyAuth).Msg(errors.ErrEmptyAuth.Error())
			inHttp.WriteErrorResponse(c, w, errors.ErrEmptyAuth)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		claims := token.ClaimsFromContext(c)
		if claims == nil {
			zerolog.Ctx(c).Error().Err(errors.ErrEmptyAuth).Msg(errors.ErrEmptyAuth.Error())
			inHttp.WriteErrorResponse(c, w, errors.ErrEmptyAuth)
			return
		}
		if !claims.IsAdmin() {
			zerolog.Ctx(c).Error().Err(errors.ErrForbidden).Msg(errors.ErrForbidden.Error())
			inHttp.WriteErrorResponse(c, w, errors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

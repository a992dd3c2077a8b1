package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bwise1/reportnow/util/tracing"
	"github.com/bwise1/reportnow/util/values"
	"github.com/golang-jwt/jwt"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const adminRole = "admin"

var (
	errTokenExpired = errors.New("token expired")
	errInvalidToken = errors.New("invalid token")
)

// RequestTracing attaches a tracing.Context to the request. Callers that do
// not name themselves are treated as the web client.
func RequestTracing(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestSource := r.Header.Get(values.HeaderRequestSource)
		if requestSource == "" {
			requestSource = values.DefaultRequestSource
		}

		requestID := r.Header.Get(values.HeaderRequestID)
		if requestID == "" {
			requestID = cuid.New()
		}
		w.Header().Set(values.HeaderRequestID, requestID)

		tracingContext := tracing.Context{
			RequestID:     requestID,
			RequestSource: requestSource,
		}

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", requestID).Str("request_source", requestSource)
		})

		ctx = context.WithValue(ctx, values.ContextTracingKey, tracingContext)
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

func tracingFrom(r *http.Request) tracing.Context {
	if tc, ok := r.Context().Value(values.ContextTracingKey).(tracing.Context); ok {
		return tc
	}
	return tracing.Context{RequestSource: values.DefaultRequestSource}
}

// RequireAdmin guards operator endpoints with an HS256 bearer token carrying
// role=admin. It is a no-op when no admin secret is configured.
func (api *API) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.Config == nil || api.Config.AdminJwtSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		authorization := strings.Split(r.Header.Get("Authorization"), " ")
		if len(authorization) != 2 || authorization[0] != "Bearer" {
			writeErrorResponse(w, errors.New(values.NotAuthorised), values.NotAuthorised, "not-authorized")
			return
		}

		if err := api.verifyAdminToken(authorization[1]); err != nil {
			if errors.Is(err, errTokenExpired) {
				writeErrorResponse(w, err, values.TokenExpired, "token-expired")
				return
			}
			writeErrorResponse(w, err, values.NotAuthorised, "invalid-token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (api *API) verifyAdminToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(api.Config.AdminJwtSecret), nil
	})

	var ve *jwt.ValidationError
	if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
		return errTokenExpired
	}
	if err != nil || !token.Valid {
		return errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errInvalidToken
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return errInvalidToken
	}
	return nil
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"academics/internal/auth"
	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/service"
)

// claimsKey is where the JWT middleware stores *auth.Claims.
const claimsKey = "user"

// AccessTokenValidator verifies bearer tokens.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// JWTMiddleware authenticates requests with an access token from the
// Authorization header and stores its claims on the context.
func JWTMiddleware(v AccessTokenValidator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return v.ValidateAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, apperrors.ErrTokenExpired) || errors.Is(err, apperrors.ErrTokenInvalid) {
				return respondError(c, err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "missing or malformed bearer token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// RequireRoles rejects callers whose role is not one of roles.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := claimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHORIZED",
				})
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return respondError(c, apperrors.ErrForbidden)
		}
	}
}

func claimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// actorFrom returns the authenticated caller. Routes using it sit behind JWTMiddleware.
func actorFrom(c echo.Context) service.Actor {
	claims, ok := claimsFrom(c)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}
}

// respondError renders a domain error as {error, code}. Server-side
// failures are logged with the request's logger.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorj(map[string]interface{}{
			"error":      err.Error(),
			"path":       c.Path(),
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		})
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{Error: message, Code: code})
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}
	return nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid "+name, "INVALID_ID")
	}
	return uint(id), nil
}

// optionalUint reads an optional positive integer query parameter.
func optionalUint(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, badRequest("invalid "+name, "INVALID_QUERY")
	}
	id := uint(v)
	return &id, nil
}

package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"learnhub/internal/auth"
	"learnhub/internal/config"
	"learnhub/internal/errors"
	"learnhub/internal/handler"
	"learnhub/internal/logging"
	"learnhub/internal/model"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Course      *handler.CourseHandler
	Certificate *handler.CertificateHandler
	Health      *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(cfg.LogSkipPaths))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: OriginAllowed(cfg.CORSOrigins),
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", h.Health.Check)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/certificates/verify/:id", h.Certificate.Verify)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(cfg.JWTSecret),
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:    auth.ContextKey,
		NewClaimsFunc: auth.NewClaims,
	}), RequireRole(model.RoleStudent))

	secured.GET("/me", h.Auth.Me)
	secured.GET("/courses", h.Course.List)
	secured.GET("/courses/:id", h.Course.Get)

	admin := secured.Group("", RequireRole(model.RoleAdmin))

	admin.POST("/courses", h.Course.Create)
	admin.PUT("/courses/:id", h.Course.Update)
	admin.DELETE("/courses/:id", h.Course.Delete)

	admin.GET("/users", h.User.ListUsers)
	admin.GET("/users/:id", h.User.GetUser)

	admin.POST("/certificates", h.Certificate.Issue)
	admin.GET("/certificates", h.Certificate.List)
	admin.GET("/certificates/:id", h.Certificate.Get)
	admin.PATCH("/certificates/:id/revoke", h.Certificate.Revoke)
	admin.DELETE("/certificates/:id", h.Certificate.Purge)
}

// RequireRole rejects requests whose access token ranks below min.
func RequireRole(min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid token",
					Code:  "INVALID_TOKEN",
				})
			}
			if !claims.Role.AtLeast(min) {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: "insufficient role",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// OriginAllowed builds a CORS predicate over an allow-list. A "*" entry
// allows every origin.
func OriginAllowed(allowList []string) func(origin string) (bool, error) {
	allowed := make(map[string]struct{}, len(allowList))
	wildcard := false
	for _, o := range allowList {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}
	return func(origin string) (bool, error) {
		if wildcard {
			return true, nil
		}
		_, ok := allowed[origin]
		return ok, nil
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

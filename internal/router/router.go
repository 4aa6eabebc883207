package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"academics/internal/handler"
	"academics/internal/model"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Catalogue   *handler.CatalogueHandler
	Inscription *handler.InscriptionHandler
	Notes       *handler.NoteHandler
	Stats       *handler.StatsHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, tokens handler.AccessTokenValidator, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
				c.Logger().Warnj(fields)
				return nil
			}
			c.Logger().Infoj(fields)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/login", h.Auth.Login)
	api.POST("/token", h.Auth.Login)
	api.POST("/token/refresh", h.Auth.Refresh)
	api.POST("/register", h.Auth.Register)

	// Secured routes (require a valid access token)
	secured := api.Group("", handler.JWTMiddleware(tokens))
	secured.GET("/me", h.Auth.Me)

	admin := handler.RequireRoles(model.RolesWhere(model.Role.CanManageAcademics)...)
	overseers := handler.RequireRoles(model.RolesWhere(model.Role.CanViewStatistics)...)
	graders := handler.RequireRoles(model.RolesWhere(model.Role.CanGrade)...)

	// Users
	secured.GET("/users", h.Users.ListUsers, overseers)
	secured.GET("/users/:id", h.Users.GetUser, overseers)
	secured.POST("/users", h.Users.CreateUser, admin)
	secured.PUT("/users/:id", h.Users.UpdateUser, admin)
	secured.DELETE("/users/:id", h.Users.DeleteUser, admin)

	// Catalogue
	secured.GET("/departements", h.Catalogue.ListDepartements)
	secured.GET("/departements/:id", h.Catalogue.GetDepartement)
	secured.POST("/departements", h.Catalogue.CreateDepartement, admin)
	secured.PUT("/departements/:id", h.Catalogue.UpdateDepartement, admin)
	secured.DELETE("/departements/:id", h.Catalogue.DeleteDepartement, admin)

	secured.GET("/filieres", h.Catalogue.ListFilieres)
	secured.GET("/filieres/:id", h.Catalogue.GetFiliere)
	secured.POST("/filieres", h.Catalogue.CreateFiliere, admin)
	secured.PUT("/filieres/:id", h.Catalogue.UpdateFiliere, admin)
	secured.DELETE("/filieres/:id", h.Catalogue.DeleteFiliere, admin)

	secured.GET("/modules", h.Catalogue.ListModules)
	secured.GET("/modules/:id", h.Catalogue.GetModule)
	secured.POST("/modules", h.Catalogue.CreateModule, admin)
	secured.PUT("/modules/:id", h.Catalogue.UpdateModule, admin)
	secured.DELETE("/modules/:id", h.Catalogue.DeleteModule, admin)

	// Inscriptions
	secured.POST("/inscriptions", h.Inscription.Apply, handler.RequireRoles(model.RoleStudent, model.RoleAdmin))
	secured.GET("/inscriptions", h.Inscription.List, handler.RequireRoles(model.RoleStudent, model.RoleAdmin, model.RoleDirection))
	secured.GET("/inscriptions/:id", h.Inscription.Get, handler.RequireRoles(model.RoleStudent, model.RoleAdmin, model.RoleDirection))
	secured.PATCH("/inscriptions/:id/validate", h.Inscription.Review, admin)
	secured.DELETE("/inscriptions/:id", h.Inscription.Delete, admin)

	// Notes
	secured.GET("/notes", h.Notes.List)
	secured.GET("/notes/my-modules", h.Notes.MyModules, handler.RequireRoles(model.RoleTeacher))
	secured.GET("/notes/modules/:id/students", h.Notes.ModuleStudents, graders)
	secured.POST("/notes/modules/:id/bulk", h.Notes.BulkGrade, graders)
	secured.DELETE("/notes/:id", h.Notes.Delete, admin)

	// Statistics
	secured.GET("/admin/dashboard", h.Stats.Dashboard, overseers)
	secured.GET("/admin/performance", h.Stats.Performance, overseers)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

package rest

import (
	"database/sql"
	"net/http"

	"github.com/frahmantamala/admin-access/internal/app"
	"github.com/frahmantamala/admin-access/internal/auth"
	"github.com/frahmantamala/admin-access/internal/permission"
	"github.com/frahmantamala/admin-access/internal/transport/middleware"
	"github.com/frahmantamala/admin-access/internal/transport/swagger"
	"github.com/frahmantamala/admin-access/internal/user"
	"github.com/frahmantamala/admin-access/internal/usergroup"
	"github.com/frahmantamala/admin-access/internal/view"
	"github.com/frahmantamala/admin-access/pkg/logger"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
)

// Function ids for the protected admin routes. They match the rows installed
// by the seeder; routes and grants meet only through these ids.
const (
	fnUsersRead int64 = iota + 1
	fnUsersWrite
	fnGroupsRead
	fnGroupsWrite
	fnPermissionsRead
	fnPermissionsWrite
	fnAppsRead
	fnAppsWrite
	fnViewsRead
	fnViewsWrite
	fnFunctionsRead
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	UserGroup  *usergroup.Handler
	Permission *permission.Handler
	App        *app.Handler
	View       *view.Handler
}

func NewRouter(db *sql.DB, authSvc auth.ServiceAPI, h Handlers, openAPIPath string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware(logger.L()))
	r.Use(middleware.RecoveryMiddleware)

	health := NewHealthHandler(db)
	r.Get("/ping", health.pingHandler)
	r.Get("/health", health.healthCheckHandler)

	r.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, openAPIPath)
	})
	r.Mount("/swagger", swagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/password/temp", h.Auth.ChangeTempPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authSvc))

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/password", h.Auth.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequireFunction(authSvc, fnUsersRead)).Get("/", h.User.List)
				r.With(middleware.RequireFunction(authSvc, fnUsersRead)).Get("/{id}", h.User.Get)
				r.With(middleware.RequireFunction(authSvc, fnUsersWrite)).Post("/", h.User.Create)
				r.With(middleware.RequireFunction(authSvc, fnUsersWrite)).Patch("/{id}", h.User.Update)
				r.With(middleware.RequireFunction(authSvc, fnUsersWrite)).Patch("/{id}/on-off", h.User.OnOff)
				r.With(middleware.RequireFunction(authSvc, fnUsersWrite)).Post("/{id}/password/reset", h.User.ResetPassword)

				r.With(middleware.RequireFunction(authSvc, fnPermissionsRead)).Get("/{id}/permissions", h.Permission.GrantedToUser)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsRead)).Get("/{id}/permissions/available", h.Permission.AvailableForUser)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsWrite)).Put("/{id}/permissions", h.Permission.SetForUser)

				r.With(middleware.RequireFunction(authSvc, fnAppsRead)).Get("/{id}/apps", h.App.GrantedToUser)
				r.With(middleware.RequireFunction(authSvc, fnAppsRead)).Get("/{id}/apps/available", h.App.AvailableForUser)
				r.With(middleware.RequireFunction(authSvc, fnAppsWrite)).Put("/{id}/apps", h.App.SetForUser)

				r.With(middleware.RequireFunction(authSvc, fnViewsRead)).Get("/{id}/views", h.View.GrantedToUser)
				r.With(middleware.RequireFunction(authSvc, fnViewsRead)).Get("/{id}/views/available", h.View.AvailableForUser)
				r.With(middleware.RequireFunction(authSvc, fnViewsWrite)).Put("/{id}/views", h.View.SetForUser)
			})

			r.Route("/user-groups", func(r chi.Router) {
				r.With(middleware.RequireFunction(authSvc, fnGroupsRead)).Get("/", h.UserGroup.List)
				r.With(middleware.RequireFunction(authSvc, fnGroupsRead)).Get("/{id}", h.UserGroup.Get)
				r.With(middleware.RequireFunction(authSvc, fnGroupsWrite)).Post("/", h.UserGroup.Create)
				r.With(middleware.RequireFunction(authSvc, fnGroupsWrite)).Patch("/{id}", h.UserGroup.Update)
				r.With(middleware.RequireFunction(authSvc, fnGroupsWrite)).Patch("/{id}/on-off", h.UserGroup.OnOff)

				r.With(middleware.RequireFunction(authSvc, fnPermissionsRead)).Get("/{id}/permissions", h.Permission.GrantedToGroup)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsRead)).Get("/{id}/permissions/available", h.Permission.AvailableForGroup)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsWrite)).Put("/{id}/permissions", h.Permission.SetForGroup)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.With(middleware.RequireFunction(authSvc, fnPermissionsRead)).Get("/", h.Permission.List)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsRead)).Get("/{id}", h.Permission.Get)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsWrite)).Post("/", h.Permission.Create)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsWrite)).Patch("/{id}", h.Permission.Update)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsWrite)).Patch("/{id}/on-off", h.Permission.OnOff)
				r.With(middleware.RequireFunction(authSvc, fnPermissionsWrite)).Put("/{id}/functions", h.Permission.SetFunctions)
			})

			r.Route("/functions", func(r chi.Router) {
				r.With(middleware.RequireFunction(authSvc, fnFunctionsRead)).Get("/", h.Permission.ListFunctions)
				r.With(middleware.RequireFunction(authSvc, fnFunctionsRead)).Get("/{id}", h.Permission.GetFunction)
			})

			r.Route("/apps", func(r chi.Router) {
				r.With(middleware.RequireFunction(authSvc, fnAppsRead)).Get("/", h.App.List)
				r.With(middleware.RequireFunction(authSvc, fnAppsRead)).Get("/{id}", h.App.Get)
				r.With(middleware.RequireFunction(authSvc, fnAppsWrite)).Post("/", h.App.Create)
				r.With(middleware.RequireFunction(authSvc, fnAppsWrite)).Patch("/{id}", h.App.Update)
				r.With(middleware.RequireFunction(authSvc, fnAppsWrite)).Patch("/{id}/on-off", h.App.OnOff)

				r.With(middleware.RequireFunction(authSvc, fnViewsRead)).Get("/{id}/views", h.View.GrantedToApp)
				r.With(middleware.RequireFunction(authSvc, fnViewsRead)).Get("/{id}/views/available", h.View.AvailableForApp)
				r.With(middleware.RequireFunction(authSvc, fnViewsWrite)).Put("/{id}/views", h.View.SetForApp)
			})

			r.Route("/views", func(r chi.Router) {
				r.With(middleware.RequireFunction(authSvc, fnViewsRead)).Get("/", h.View.List)
				r.With(middleware.RequireFunction(authSvc, fnViewsRead)).Get("/{id}", h.View.Get)
				r.With(middleware.RequireFunction(authSvc, fnViewsWrite)).Post("/", h.View.Create)
				r.With(middleware.RequireFunction(authSvc, fnViewsWrite)).Patch("/{id}", h.View.Update)
				r.With(middleware.RequireFunction(authSvc, fnViewsWrite)).Patch("/{id}/on-off", h.View.OnOff)
			})
		})
	})

	return r
}

package gateway

import (
	"github.com/exalabs/exapower/internal/middlewares"
	"github.com/exalabs/exapower/internal/session"
	"github.com/go-chi/chi/v5"
)

func NewRouter(api *API, store session.Store) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middlewares.Logger(api.log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/session/register", api.Register)
		r.Post("/session/login", api.Login)
		r.Post("/session/logout", api.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireSession(store))
			r.Get("/user/profile", api.Profile)
			r.Get("/wallet/summary", api.Summary)
			r.Post("/wallet/run", api.Run)
			r.Post("/wallet/withdraw", api.Withdraw)
			r.Get("/wallet/state", api.State)
			r.Get("/wallet/deposit-address", api.DepositAddress)
		})
	})
	return r
}

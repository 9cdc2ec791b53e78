// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// storefront API. Catalog reads are public; catalog writes and question
// moderation require an admin or editor session.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
)

// Handlers bundles the handler groups mounted by New.
type Handlers struct {
	Auth       *handlers.Auth
	Categories *handlers.Categories
	Products   *handlers.Products
	Questions  *handlers.Questions
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. loginLimiter may be nil.
func New(sessions middleware.SessionGetter, loginLimiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessions))

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if loginLimiter != nil {
					r.Use(loginLimiter.Middleware)
				}
				r.Post("/login", h.Auth.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Get("/{id}", h.Categories.Get)
			r.Get("/{id}/subcategories", h.Categories.Subcategories)
			r.Get("/{id}/path", h.Categories.Path)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				// Static segment, matched before {id}.
				r.Put("/update-counts", h.Categories.UpdateCounts)
				r.Post("/", h.Categories.Create)
				r.Put("/{id}", h.Categories.Update)
				r.Delete("/{id}", h.Categories.Delete)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/search", h.Products.Search)
			r.Get("/{id}", h.Products.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Post("/", h.Products.Create)
				r.Put("/{id}", h.Products.Update)
				r.Patch("/{id}/stock", h.Products.UpdateStock)
				r.Delete("/{id}", h.Products.Delete)
			})
		})

		r.Route("/questions", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", h.Questions.Create)
			r.Get("/", h.Questions.List)
			r.Get("/{id}", h.Questions.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Put("/{id}/answer", h.Questions.Answer)
				r.Put("/{id}/reject", h.Questions.Reject)
				r.Delete("/{id}", h.Questions.Delete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

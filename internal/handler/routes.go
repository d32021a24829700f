package handler

import (
	"github.com/ctu-developers/DSpace/internal/handler/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	app *fiber.App,
	personHandler *AuthorityPersonHandler,
	choiceHandler *ChoiceHandler,
	healthHandler *HealthHandler,
) {
	requirePrincipal := middleware.RequirePrincipal()

	// Health checks and metrics (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Persons; static paths before /:uid
	persons := app.Group("/authoritypersons")
	persons.Get("/", personHandler.List)
	persons.Post("/", requirePrincipal, personHandler.Create)
	persons.Post("/search-by-authority", personHandler.SearchByAuthority)
	persons.Post("/search-by-name", personHandler.SearchByName)

	persons.Get("/:uid", personHandler.Get)
	persons.Put("/:uid", requirePrincipal, personHandler.Update)
	persons.Delete("/:uid", requirePrincipal, personHandler.Delete)
	persons.Get("/:uid/items", personHandler.ListItems)

	// Authorities nested in a person
	persons.Get("/:uid/authorities", personHandler.ListAuthorities)
	persons.Post("/:uid/authorities", requirePrincipal, personHandler.CreateAuthority)
	persons.Get("/:uid/authorities/:name", personHandler.GetAuthorityKey)
	persons.Put("/:uid/authorities/:name", requirePrincipal, personHandler.UpdateAuthority)
	persons.Delete("/:uid/authorities/:name", requirePrincipal, personHandler.DeleteAuthority)

	app.Get("/authorities", personHandler.ListAllAuthorities)

	// Name suggestions for metadata entry forms
	choices := app.Group("/choices/authoritypersons")
	choices.Get("/", choiceHandler.Matches)
	choices.Get("/:uid/label", choiceHandler.Label)
}

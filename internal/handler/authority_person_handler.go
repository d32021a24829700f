package handler

import (
	"github.com/ctu-developers/DSpace/internal/handler/middleware"
	"github.com/ctu-developers/DSpace/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AuthorityPersonHandler struct {
	authorityService *service.AuthorityService
}

func NewAuthorityPersonHandler(authorityService *service.AuthorityService) *AuthorityPersonHandler {
	return &AuthorityPersonHandler{authorityService: authorityService}
}

// List returns a page of persons
// GET /authoritypersons
func (h *AuthorityPersonHandler) List(c *fiber.Ctx) error {
	persons, err := h.authorityService.ListPersons(c.UserContext(), middleware.PrincipalFrom(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(persons)
}

// Get returns one person
// GET /authoritypersons/:uid
func (h *AuthorityPersonHandler) Get(c *fiber.Ctx) error {
	person, err := h.authorityService.GetPerson(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(person)
}

// ListAuthorities returns a page of the person's visible authorities
// GET /authoritypersons/:uid/authorities
func (h *AuthorityPersonHandler) ListAuthorities(c *fiber.Ctx) error {
	authorities, err := h.authorityService.ListPersonAuthorities(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(authorities)
}

// GetAuthorityKey returns the key held in the named authority as plain text
// GET /authoritypersons/:uid/authorities/:name
func (h *AuthorityPersonHandler) GetAuthorityKey(c *fiber.Ctx) error {
	key, err := h.authorityService.GetPersonAuthorityKey(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.SendString(key)
}

// ListItems returns the items referencing the person
// GET /authoritypersons/:uid/items
func (h *AuthorityPersonHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.authorityService.ListPersonItems(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), expandFromQuery(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Create creates a person
// POST /authoritypersons
func (h *AuthorityPersonHandler) Create(c *fiber.Ctx) error {
	var req service.PersonRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	person, err := h.authorityService.CreatePerson(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(person)
}

// CreateAuthority attaches a new authority to the person
// POST /authoritypersons/:uid/authorities
func (h *AuthorityPersonHandler) CreateAuthority(c *fiber.Ctx) error {
	var req service.AuthorityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	authority, err := h.authorityService.CreatePersonAuthority(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(authority)
}

// SearchByAuthority finds the person holding an authority name/key pair
// POST /authoritypersons/search-by-authority
func (h *AuthorityPersonHandler) SearchByAuthority(c *fiber.Ctx) error {
	var req service.AuthorityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	person, err := h.authorityService.SearchByAuthority(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(person)
}

// SearchByName finds persons named "Lastname, Firstname"
// POST /authoritypersons/search-by-name
func (h *AuthorityPersonHandler) SearchByName(c *fiber.Ctx) error {
	name, err := nameFromBody(c.Body())
	if err != nil {
		return badRequest(c, "invalid request body")
	}

	persons, err := h.authorityService.SearchByName(c.UserContext(), middleware.PrincipalFrom(c), name, pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(persons)
}

// Update replaces uid and names of the person
// PUT /authoritypersons/:uid
func (h *AuthorityPersonHandler) Update(c *fiber.Ctx) error {
	var req service.PersonRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.authorityService.UpdatePerson(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// UpdateAuthority replaces name and key of the named authority
// PUT /authoritypersons/:uid/authorities/:name
func (h *AuthorityPersonHandler) UpdateAuthority(c *fiber.Ctx) error {
	var req service.AuthorityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	err := h.authorityService.UpdatePersonAuthority(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), c.Params("name"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// Delete deletes the person and its authorities
// DELETE /authoritypersons/:uid
func (h *AuthorityPersonHandler) Delete(c *fiber.Ctx) error {
	if err := h.authorityService.DeletePerson(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// DeleteAuthority deletes the named authority of the person
// DELETE /authoritypersons/:uid/authorities/:name
func (h *AuthorityPersonHandler) DeleteAuthority(c *fiber.Ctx) error {
	if err := h.authorityService.DeletePersonAuthority(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// ListAllAuthorities returns a page of every authority visible to the caller
// GET /authorities
func (h *AuthorityPersonHandler) ListAllAuthorities(c *fiber.Ctx) error {
	authorities, err := h.authorityService.ListAuthorities(c.UserContext(), middleware.PrincipalFrom(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(authorities)
}

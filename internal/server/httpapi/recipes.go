package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"
)

func (h *handler) saveRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	ings := make([]services.IngredientInput, 0, len(req.Ingredients))
	for _, i := range req.Ingredients {
		ings = append(ings, services.IngredientInput{Name: i.Name, Quantity: i.Quantity, Unit: i.Unit})
	}

	r, err := h.recipes.Save(c.Request.Context(), currentUser(c), req.Title, req.Description, ings)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipe(r))
}

func (h *handler) listRecipes(c *gin.Context) {
	list, err := h.recipes.List(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]recipeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRecipe(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getRecipe(c *gin.Context) {
	r, err := h.recipes.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipe(r))
}

func (h *handler) deleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) recipePhoto(c *gin.Context) {
	url, key, err := h.recipes.PhotoUploadURL(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, photoResponse{UploadURL: url, PhotoKey: key})
}

func (h *handler) suggest(c *gin.Context) {
	list, err := h.suggestions.Suggest(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []models.RecipeSuggestion{}
	}
	c.JSON(http.StatusOK, list)
}

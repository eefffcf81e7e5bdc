package httpapi

import (
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// lotRequest is used both for reports (POST) and replacements (PUT).
// Quantity is a pointer so that a missing value differs from zero.
type lotRequest struct {
	Name           string   `json:"name"`
	Quantity       *float64 `json:"quantity"`
	Unit           string   `json:"unit"`
	ExpirationDate string   `json:"expiration_date"`
}

type lotResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	ExpirationDate string    `json:"expiration_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type addLotResponse struct {
	Action models.Action `json:"action"`
	Lot    lotResponse   `json:"lot"`
}

type consumeRequest struct {
	Quantity *float64 `json:"quantity"`
}

type consumeResponse struct {
	Removed bool         `json:"removed"`
	Lot     *lotResponse `json:"lot,omitempty"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

type ingredientDTO struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type recipeRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Ingredients []ingredientDTO `json:"ingredients"`
}

type recipeResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	PhotoKey    string          `json:"photo_key,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Ingredients []ingredientDTO `json:"ingredients"`
}

type photoResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoKey  string `json:"photo_key"`
}

func toLot(l *models.StockLot) lotResponse {
	return lotResponse{
		ID:             l.ID,
		Name:           l.Name,
		Quantity:       l.Quantity,
		Unit:           l.Unit,
		ExpirationDate: timex.FormatDate(l.ExpirationDate),
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func toLots(lots []*models.StockLot) []lotResponse {
	out := make([]lotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLot(l))
	}
	return out
}

func toRecipe(r *models.Recipe) recipeResponse {
	ings := make([]ingredientDTO, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ings = append(ings, ingredientDTO{Name: i.Name, Quantity: i.Quantity, Unit: i.Unit})
	}
	return recipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		PhotoKey:    r.PhotoKey,
		CreatedAt:   r.CreatedAt,
		Ingredients: ings,
	}
}

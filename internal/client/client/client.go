package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrijs2005/pantrykeeper/internal/client/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/netx"
)

type Client interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, username, password string) error
	Logout()
	LoggedIn() bool

	AddLot(ctx context.Context, in models.LotInput) (*models.AddResult, error)
	ListLots(ctx context.Context) ([]models.Lot, error)
	ExpiringLots(ctx context.Context, days int) ([]models.Lot, error)
	ConsumeLot(ctx context.Context, lotID string, quantity float64) (*models.ConsumeResult, error)
	DeleteLot(ctx context.Context, lotID string) error
	ClearLots(ctx context.Context) (int64, error)

	SaveRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	Suggest(ctx context.Context) ([]models.Suggestion, error)
	PhotoUploadURL(ctx context.Context, recipeID string) (*models.PhotoUpload, error)
	UploadPhoto(ctx context.Context, url string, data []byte) error
}

type APIClient struct {
	http *resty.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{http: rc}
}

func (c *APIClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *APIClient) setTokens(p *models.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		c.accessToken, c.refreshToken = "", ""
		return
	}
	c.accessToken, c.refreshToken = p.AccessToken, p.RefreshToken
}

func (c *APIClient) send(ctx context.Context, method, path string, body, result any, token string) (*resty.Response, error) {
	r := c.http.R().
		SetContext(ctx).
		SetError(&APIError{})
	if body != nil {
		r.SetBody(body)
	}
	if result != nil {
		r.SetResult(result)
	}
	if token != "" {
		r.SetAuthToken(token)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// do runs a request. Authenticated requests that fail with an expired
// access token are retried once after a refresh.
func (c *APIClient) do(ctx context.Context, method, path string, body, result any, auth bool) error {
	var token string
	if auth {
		access, _ := c.tokens()
		if access == "" {
			return ErrNotLoggedIn
		}
		token = access
	}

	resp, err := c.send(ctx, method, path, body, result, token)
	if err != nil {
		return err
	}

	apiErr := responseError(resp)
	if auth && apiErr != nil && apiErr.Status == http.StatusUnauthorized && apiErr.Code == codeTokenExpired {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		access, _ := c.tokens()
		resp, err = c.send(ctx, method, path, body, result, access)
		if err != nil {
			return err
		}
		apiErr = responseError(resp)
	}

	if apiErr != nil {
		return apiErr
	}
	return nil
}

func responseError(resp *resty.Response) *APIError {
	if !resp.IsError() {
		return nil
	}
	e, ok := resp.Error().(*APIError)
	if !ok || e == nil {
		e = &APIError{}
	}
	e.Status = resp.StatusCode()
	return e
}

func (c *APIClient) refresh(ctx context.Context) error {
	_, refreshToken := c.tokens()
	if refreshToken == "" {
		return ErrUnauthorized
	}

	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/users/refresh", map[string]string{"refresh_token": refreshToken}, &pair, false); err != nil {
		c.setTokens(nil)
		return err
	}
	c.setTokens(&pair)
	return nil
}

func (c *APIClient) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/users/register", body, nil, false)
}

func (c *APIClient) Login(ctx context.Context, username, password string) error {
	var pair models.TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", body, &pair, false); err != nil {
		return err
	}
	c.setTokens(&pair)
	return nil
}

func (c *APIClient) Logout() { c.setTokens(nil) }

func (c *APIClient) LoggedIn() bool {
	access, _ := c.tokens()
	return access != ""
}

func (c *APIClient) AddLot(ctx context.Context, in models.LotInput) (*models.AddResult, error) {
	var out models.AddResult
	if err := c.do(ctx, http.MethodPost, "/api/inventory", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListLots(ctx context.Context) ([]models.Lot, error) {
	var out []models.Lot
	if err := c.do(ctx, http.MethodGet, "/api/inventory", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ExpiringLots(ctx context.Context, days int) ([]models.Lot, error) {
	var out []models.Lot
	path := "/api/inventory/expiring?days=" + strconv.Itoa(days)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ConsumeLot(ctx context.Context, lotID string, quantity float64) (*models.ConsumeResult, error) {
	var out models.ConsumeResult
	body := map[string]float64{"quantity": quantity}
	if err := c.do(ctx, http.MethodPost, "/api/inventory/"+lotID+"/consume", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) DeleteLot(ctx context.Context, lotID string) error {
	return c.do(ctx, http.MethodDelete, "/api/inventory/"+lotID, nil, nil, true)
}

func (c *APIClient) ClearLots(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/inventory", nil, &out, true); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *APIClient) SaveRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	var out models.Recipe
	if err := c.do(ctx, http.MethodPost, "/api/recipes", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var out []models.Recipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Suggest(ctx context.Context) ([]models.Suggestion, error) {
	var out []models.Suggestion
	if err := c.do(ctx, http.MethodGet, "/api/recipes/suggestions", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) PhotoUploadURL(ctx context.Context, recipeID string) (*models.PhotoUpload, error) {
	var out models.PhotoUpload
	if err := c.do(ctx, http.MethodPost, "/api/recipes/"+recipeID+"/photo", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPhoto sends data straight to the object store. The presigned URL
// carries its own credentials, so no bearer token is attached.
func (c *APIClient) UploadPhoto(ctx context.Context, url string, data []byte) error {
	return netx.UploadToPresignedURL(ctx, c.http, url, data)
}

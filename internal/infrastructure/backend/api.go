package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// AuthResponse is the backend's answer to a login or registration. Older
// deployments name the token "accessToken".
type AuthResponse struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"accessToken"`
	User        *domain.User `json:"user"`
}

// BearerToken returns whichever token field the backend filled in.
func (r AuthResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// AccountInput creates or updates a platform account.
type AccountInput struct {
	Username    string      `json:"username,omitempty"`
	Password    string      `json:"password,omitempty"`
	Role        domain.Role `json:"role,omitempty"`
	Email       string      `json:"email,omitempty"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	FullName    string      `json:"fullName,omitempty"`
}

// ApiClient is the general-purpose client rooted at the backend base URL.
type ApiClient struct {
	root   resource
	claims resource
	farms  resource
}

func NewApiClient(ex ports.Executor) *ApiClient {
	return &ApiClient{
		root:   newResource(ex, "/"),
		claims: newResource(ex, "/claims"),
		farms:  newResource(ex, "/farms"),
	}
}

// Get, Post, Put, Patch and Delete return the response body untouched.

func (c *ApiClient) Get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, path, q, nil)
}

func (c *ApiClient) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, path, nil, body)
}

func (c *ApiClient) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, path, nil, body)
}

func (c *ApiClient) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPatch, path, nil, body)
}

func (c *ApiClient) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodDelete, path, nil, nil)
}

func (c *ApiClient) raw(ctx context.Context, method, path string, q url.Values, body any) (json.RawMessage, error) {
	return c.root.ex.Execute(ctx, c.root.request(method, path, q, body))
}

// Login exchanges credentials for a token. The identifier is a username,
// email or phone number. A 401 here is a rejected login, not an expired
// session.
func (c *ApiClient) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	return c.anonymous(ctx, "/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
}

func (c *ApiClient) Register(ctx context.Context, in AccountInput) (*AuthResponse, error) {
	return c.anonymous(ctx, "/auth/register", in)
}

func (c *ApiClient) anonymous(ctx context.Context, path string, body any) (*AuthResponse, error) {
	req := c.root.request(http.MethodPost, path, nil, body)
	req.Anonymous = true
	raw, err := c.root.ex.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	var out AuthResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (c *ApiClient) Profile(ctx context.Context) (domain.User, error) {
	return fetch[domain.User](ctx, c.root, "/auth/profile", nil)
}

func (c *ApiClient) ListClaims(ctx context.Context, f ListFilter) ([]domain.Claim, error) {
	return fetchList[domain.Claim](ctx, c.claims, c.claims.path(), f.values())
}

func (c *ApiClient) GetClaim(ctx context.Context, id string) (domain.Claim, error) {
	return fetch[domain.Claim](ctx, c.claims, c.claims.path(id), nil)
}

func (c *ApiClient) CreateClaim(ctx context.Context, claim domain.Claim) (domain.Claim, error) {
	return send[domain.Claim](ctx, c.claims, http.MethodPost, c.claims.path(), claim)
}

func (c *ApiClient) UpdateClaimStatus(ctx context.Context, id string, status domain.ClaimStatus, note string) (domain.Claim, error) {
	body := map[string]string{"status": string(status)}
	if note != "" {
		body["note"] = note
	}
	return send[domain.Claim](ctx, c.claims, http.MethodPatch, c.claims.path(id, "status"), body)
}

// ListFarms lists farms, narrowed to one farmer when farmerID is set.
func (c *ApiClient) ListFarms(ctx context.Context, farmerID string) ([]domain.Farm, error) {
	var q url.Values
	if farmerID != "" {
		q = url.Values{"farmerId": {farmerID}}
	}
	return fetchList[domain.Farm](ctx, c.farms, c.farms.path(), q)
}

func (c *ApiClient) CreateFarm(ctx context.Context, farm domain.Farm) (domain.Farm, error) {
	return send[domain.Farm](ctx, c.farms, http.MethodPost, c.farms.path(), farm)
}

func (c *ApiClient) Weather(ctx context.Context, lat, lng float64) (domain.WeatherReport, error) {
	q := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}
	return fetch[domain.WeatherReport](ctx, c.root, "/weather", q)
}

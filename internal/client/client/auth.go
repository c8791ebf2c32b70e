package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.Tokens, error) {
	var t models.Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		body:   models.Credentials{Username: username, Password: password},
		public: true,
	}, &t)
	return t, err
}

func (c *HTTPClient) LoginEmail(ctx context.Context, email, password string) (models.Tokens, error) {
	var t models.Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login/email",
		body:   models.Credentials{Email: email, Password: password},
		public: true,
	}, &t)
	return t, err
}

func (c *HTTPClient) Register(ctx context.Context, u models.UserCreate) (models.User, error) {
	var out models.User
	err := c.do(ctx, request{method: http.MethodPost, path: "/register", body: u, public: true}, &out)
	return out, err
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	var t models.Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/refresh",
		body:   map[string]string{"refresh_token": refreshToken},
		public: true,
	}, &t)
	return t, err
}

func (c *HTTPClient) Profile(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/profile"}, &u)
	return u, err
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.UserUpdate) (models.User, error) {
	var u models.User
	err := c.do(ctx, request{method: http.MethodPut, path: "/users/me", body: upd}, &u)
	return u, err
}

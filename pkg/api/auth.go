package api

import (
	"context"
	"net/http"

	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
)

const loginPath = "/api/v1/auth/login"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token. The guest cart token is
// still attached to this request so the backend can merge the guest cart
// into the user's cart.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	body := loginRequest{Email: email, Password: password}
	err := c.do(ctx, "login", http.MethodPost, loginPath, body, &resp)
	if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		return "", pkgerrors.Wrap(pkgerrors.CodeInvalidCredentials, err, "invalid credentials")
	}
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeTransport, "login response missing access token")
	}
	return resp.AccessToken, nil
}

package gateway

import (
	"context"
	"net/http"

	"github.com/nhle/taskdue/internal/model"
)

// Account provides authentication operations against the remote store.
type Account struct {
	client *Client
}

// NewAccount returns the account API for the given client.
func NewAccount(client *Client) *Account {
	return &Account{client: client}
}

// session is the session object returned when a login succeeds. Secret
// is the opaque token used to authenticate subsequent requests.
type session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// createAccountRequest is the body of an account registration call.
type createAccountRequest struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// emailSessionRequest is the body of an email/password login call.
type emailSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create registers a new account with a server-assigned user ID.
func (a *Account) Create(
	ctx context.Context,
	email string,
	password string,
) (*model.User, error) {
	body := createAccountRequest{
		UserID:   UniqueID,
		Email:    email,
		Password: password,
	}

	var user model.User
	if err := a.client.do(ctx, http.MethodPost, "/account", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateEmailSession logs in with an email and password and returns
// the opaque session token. The token is not installed on the client;
// the session layer decides when it becomes active.
func (a *Account) CreateEmailSession(
	ctx context.Context,
	email string,
	password string,
) (string, error) {
	body := emailSessionRequest{Email: email, Password: password}

	var sess session
	err := a.client.do(ctx, http.MethodPost, "/account/sessions/email", body, &sess)
	if err != nil {
		return "", err
	}
	return sess.Secret, nil
}

// CurrentUser fetches the account behind the installed session token.
// An expired or revoked token surfaces as an unauthorized StatusError.
func (a *Account) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := a.client.do(ctx, http.MethodGet, "/account", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteCurrentSession invalidates the session behind the installed
// token on the server.
func (a *Account) DeleteCurrentSession(ctx context.Context) error {
	return a.client.do(ctx, http.MethodDelete, "/account/sessions/current", nil, nil)
}

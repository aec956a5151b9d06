package client

import (
	"context"
	"net/http"
	"strings"
)

// User is a record from the user directory service. Deployments differ
// on whether the display name lives under "username" or "name".
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// DisplayName returns whichever name field the directory populated.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Name
}

// IUserClient is the user directory surface the assistant needs.
type IUserClient interface {
	List(ctx context.Context) ([]User, error)
	ListRaw(ctx context.Context) (interface{}, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetRaw(ctx context.Context, id int64) (interface{}, error)
	ResolveByName(ctx context.Context, name string) (*User, error)
}

type userClient struct {
	baseURL string
	client  *http.Client
}

func NewUserClient(baseURL string) IUserClient {
	return &userClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (c *userClient) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := getJSON(ctx, c.client, c.baseURL+"/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *userClient) ListRaw(ctx context.Context) (interface{}, error) {
	var raw interface{}
	if err := getJSON(ctx, c.client, c.baseURL+"/api/users", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *userClient) Get(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := getJSON(ctx, c.client, fmt64(c.baseURL+"/api/users/", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *userClient) GetRaw(ctx context.Context, id int64) (interface{}, error) {
	var raw interface{}
	if err := getJSON(ctx, c.client, fmt64(c.baseURL+"/api/users/", id), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ResolveByName matches a display name against the directory. Only a
// case-insensitive exact match counts; a partial name logging someone
// in as the wrong user is worse than a retry prompt. Returns nil when
// nothing matches; the caller decides how to phrase that.
func (c *userClient) ResolveByName(ctx context.Context, name string) (*User, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}
	users, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].DisplayName(), needle) {
			return &users[i], nil
		}
	}
	return nil, nil
}

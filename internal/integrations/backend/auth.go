package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rep-admin/internal/entities"
	"rep-admin/internal/integrations"
	integrationDTO "rep-admin/internal/integrations/dto"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/types"
	"rep-admin/pkg/utils"
)

const (
	loginEndpoint       = "/auth/login/"
	currentUserEndpoint = "/users/me/"
	usersEndpoint       = "/users/"
)

func (p *Provider) Login(ctx context.Context, email, password string) (*integrationDTO.LoginResult, error) {
	raw, err := p.sendJSON(ctx, http.MethodPost, loginEndpoint, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		var apiErr *integrations.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	resp, err := decodeInto[loginResponse](p, loginEndpoint, raw)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.token() == "" {
		return nil, fmt.Errorf("%w: бэкенд не вернул токен", apperrors.ErrUpstream)
	}

	result := &integrationDTO.LoginResult{Token: resp.token()}
	if len(resp.User) > 0 {
		user, err := decodeInto[entities.User](p, loginEndpoint, resp.User)
		if err != nil {
			return nil, err
		}
		if user != nil {
			result.User = *user
			return result, nil
		}
	}

	// Ответ без пользователя: спрашиваем профиль с только что выданным токеном.
	tokenCtx := utils.WithSession(ctx, &types.Session{UpstreamToken: result.Token})
	user, err := p.CurrentUser(tokenCtx)
	if err != nil {
		return nil, err
	}
	result.User = *user
	return result, nil
}

func (p *Provider) CurrentUser(ctx context.Context) (*entities.User, error) {
	raw, err := p.getJSON(ctx, currentUserEndpoint)
	if err != nil {
		return nil, err
	}
	user, err := decodeInto[entities.User](p, currentUserEndpoint, raw)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUnidentifiedUser
	}
	return user, nil
}

func (p *Provider) CreateUser(ctx context.Context, newUser entities.NewUser) (*entities.User, error) {
	raw, err := p.sendJSON(ctx, http.MethodPost, usersEndpoint, newUser)
	if err != nil {
		return nil, err
	}
	user, err := decodeInto[entities.User](p, usersEndpoint, raw)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &entities.User{RepID: newUser.RepID, Email: newUser.Email, FirstName: newUser.FirstName, LastName: newUser.LastName}, nil
	}
	return user, nil
}

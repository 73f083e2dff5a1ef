package services

import (
	"context"

	"citycompass/apperror"
	"citycompass/models"
	"citycompass/utils"
)

// AuthService logs departments in: credential check, then token issue.
type AuthService struct {
	creds  *CredentialStore
	tokens *utils.TokenIssuer
}

func NewAuthService(creds *CredentialStore, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{creds: creds, tokens: tokens}
}

func (s *AuthService) Login(ctx context.Context, code, password string) (string, *models.Department, error) {
	dept, err := s.creds.Verify(ctx, code, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(dept)
	if err != nil {
		return "", nil, &apperror.Error{Kind: apperror.KindUnhandled, Message: "generate token", Err: err}
	}
	return token, dept, nil
}

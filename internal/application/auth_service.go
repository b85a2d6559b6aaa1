package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sotsvc/service-estimate/internal/auth"
	"github.com/sotsvc/service-estimate/internal/domain"
	"github.com/sotsvc/service-estimate/internal/identity"
)

// SignUpRequest holds a new account registration.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// SignInRequest holds a credential exchange.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserDTO is the response representation of an account.
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// AuthResponseDTO carries both tokens a signed-in client needs: Token is
// this service's access token, IdentityToken is the provider session used
// only for sign-out and profile reads.
type AuthResponseDTO struct {
	Token         string  `json:"token"`
	IdentityToken string  `json:"identity_token"`
	User          UserDTO `json:"user"`
}

// AuthService brokers account operations between the external identity
// provider and this service's own access tokens.
type AuthService struct {
	provider identity.Provider
	jwt      *auth.JWTManager
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(provider identity.Provider, jwt *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		jwt:      jwt,
		logger:   logger,
	}
}

// SignUp registers an account with the provider and issues an access token.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponseDTO, error) {
	sess, err := s.provider.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	return s.toAuthResponse(sess)
}

// SignIn exchanges credentials for an access token.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*AuthResponseDTO, error) {
	sess, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.toAuthResponse(sess)
}

// SignOut revokes the provider session. Our own tokens are stateless and
// simply expire.
func (s *AuthService) SignOut(ctx context.Context, identityToken string) error {
	return s.provider.SignOut(ctx, identityToken)
}

// Me fetches the caller's profile from the provider session.
func (s *AuthService) Me(ctx context.Context, identityToken string) (*UserDTO, error) {
	user, err := s.provider.GetUser(ctx, identityToken)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, domain.NewUnauthorizedError("authentication failed").WithCause(err)
	}
	return &UserDTO{
		ID:    userID,
		Email: user.Email,
		Name:  user.Name,
		Role:  auth.RoleCustomer,
	}, nil
}

func (s *AuthService) toAuthResponse(sess identity.Session) (*AuthResponseDTO, error) {
	userID, err := uuid.Parse(sess.User.ID)
	if err != nil {
		return nil, domain.NewUnauthorizedError("authentication failed").WithCause(err)
	}

	token, err := s.jwt.Generate(userID, auth.RoleCustomer)
	if err != nil {
		s.logger.Error("failed to issue access token", zap.Error(err))
		return nil, domain.NewUnauthorizedError("authentication failed").WithCause(err)
	}

	return &AuthResponseDTO{
		Token:         token,
		IdentityToken: sess.AccessToken,
		User: UserDTO{
			ID:    userID,
			Email: sess.User.Email,
			Name:  sess.User.Name,
			Role:  auth.RoleCustomer,
		},
	}, nil
}

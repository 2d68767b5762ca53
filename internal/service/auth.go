package service

import (
	"context"
	"errors"
	"time"

	"github.com/FachruDev/backend-codecraft/internal/models"
	"github.com/FachruDev/backend-codecraft/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// DeviceContext carries request provenance stored alongside refresh tokens.
type DeviceContext struct {
	UserAgent string
	IPAddress string
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Profile  *string
	Bio      *string
	Role     string
	GroupIDs []int64
}

// PermissionInfo is a permission as exposed in profile payloads.
type PermissionInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupInfo is a group with its permissions as exposed in profile payloads.
type GroupInfo struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Permissions []PermissionInfo `json:"permissions"`
}

// UserProfile is the public view of a user with groups and permissions.
type UserProfile struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Profile *string     `json:"profile,omitempty"`
	Bio     *string     `json:"bio,omitempty"`
	Role    string      `json:"role"`
	Groups  []GroupInfo `json:"groups"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	User         UserProfile `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// RefreshResponse is returned by Refresh. Only a new access token is
// minted; the refresh token itself is not rotated.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// SessionInfo summarizes one active refresh token without exposing the
// token string itself.
type SessionInfo struct {
	ID        int64     `json:"id"`
	UserAgent *string   `json:"user_agent,omitempty"`
	IPAddress *string   `json:"ip_address,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	IsCurrent bool      `json:"is_current"`
}

// AuthService implements the authentication flows.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput, device DeviceContext) (*AuthResponse, error)
	Login(ctx context.Context, email, password string, device DeviceContext) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
	LogoutAll(ctx context.Context, userID int64) error
	ListSessions(ctx context.Context, userID int64, currentToken string) ([]SessionInfo, error)
	Profile(ctx context.Context, userID int64) (*UserProfile, error)
	SweepExpiredTokens(ctx context.Context) (int64, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.RefreshTokenRepository
	jwtService JWTService
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.RefreshTokenRepository, jwtService JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput, device DeviceContext) (*AuthResponse, error) {
	_, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = "user"
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Profile:  input.Profile,
		Bio:      input.Bio,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user, input.GroupIDs); err != nil {
		return nil, err
	}

	// Reload with groups and permissions for the response payload.
	created, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, created, device)
}

func (s *authService) Login(ctx context.Context, email, password string, device DeviceContext) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Reload with groups and permissions for the response payload.
	full, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, full, device)
}

// Refresh mints a new access token for a valid stored refresh token. The
// stored row is checked in a fixed order: existence, revocation, expiry,
// then signature and owner match. Revocation wins over expiry so a revoked
// token never reports itself as merely expired.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	record, err := s.tokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if record.Revoked() {
		return nil, ErrTokenRevoked
	}
	if record.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.UserID != record.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes one refresh token when given, or every active token for
// the user when the token string is empty.
func (s *authService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	if refreshToken != "" {
		return s.tokenRepo.Revoke(ctx, userID, refreshToken)
	}
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *authService) LogoutAll(ctx context.Context, userID int64) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *authService) ListSessions(ctx context.Context, userID int64, currentToken string) ([]SessionInfo, error) {
	records, err := s.tokenRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, SessionInfo{
			ID:        record.ID,
			UserAgent: record.UserAgent,
			IPAddress: record.IPAddress,
			IssuedAt:  record.IssuedAt,
			ExpiresAt: record.ExpiresAt,
			CreatedAt: record.CreatedAt,
			IsCurrent: currentToken != "" && record.Token == currentToken,
		})
	}
	return sessions, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	profile := toUserProfile(user)
	return &profile, nil
}

func (s *authService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User, device DeviceContext) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.jwtService.RefreshTTL()),
	}
	if device.UserAgent != "" {
		record.UserAgent = &device.UserAgent
	}
	if device.IPAddress != "" {
		record.IPAddress = &device.IPAddress
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         toUserProfile(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
	}, nil
}

func toUserProfile(user *models.User) UserProfile {
	groups := make([]GroupInfo, 0, len(user.Groups))
	for _, group := range user.Groups {
		permissions := make([]PermissionInfo, 0, len(group.Permissions))
		for _, permission := range group.Permissions {
			permissions = append(permissions, PermissionInfo{ID: permission.ID, Name: permission.Name})
		}
		groups = append(groups, GroupInfo{ID: group.ID, Name: group.Name, Permissions: permissions})
	}
	return UserProfile{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Profile: user.Profile,
		Bio:     user.Bio,
		Role:    user.Role,
		Groups:  groups,
	}
}

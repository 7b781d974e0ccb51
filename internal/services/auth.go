package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/requestdata"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type RegisterUserInput struct {
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	Role           string     `json:"role"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	EmployeeID     *uuid.UUID `json:"employee_id,omitempty"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, error)
	// SetContextFromToken validates the bearer token and attaches the
	// caller's identity to the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	orgRepo      repos.OrganizationRepo
	jwtSecretKey string
	tokenTTL     time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	orgRepo repos.OrganizationRepo,
	jwtSecretKey string,
	tokenTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		orgRepo:      orgRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, input RegisterUserInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.InvalidArgument("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apierr.InvalidArgument("password must be at least 8 characters")
	}
	role, err := types.ParseRole(input.Role)
	if err != nil {
		return nil, apierr.InvalidArgument("%v", err)
	}
	if role == types.RoleEmployee && input.EmployeeID == nil {
		return nil, apierr.InvalidArgument("employee accounts need an employee id")
	}
	if role != types.RoleEmployee && input.OrganizationID == nil {
		return nil, apierr.InvalidArgument("organization accounts need an organization id")
	}
	if input.OrganizationID != nil {
		exists, err := as.orgRepo.Exists(ctx, nil, *input.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apierr.NotFound("organization %s does not exist", input.OrganizationID)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:             uuid.New(),
		Email:          email,
		Password:       string(hash),
		Role:           role,
		OrganizationID: input.OrganizationID,
		EmployeeID:     input.EmployeeID,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := as.userRepo.EmailExists(ctx, tx, email)
		if err != nil {
			return err
		}
		if taken {
			return apierr.Conflict("email %s is already registered", email)
		}
		_, err = as.userRepo.Create(ctx, tx, []*types.User{user})
		return err
	})
	if err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Conflict("email %s is already registered", email)
		}
		return nil, err
	}
	as.log.Info("Registered user", "user_id", user.ID, "role", role)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apierr.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apierr.Unauthorized("invalid email or password")
	}
	return as.generateToken(user)
}

func (as *authService) generateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(as.tokenTTL).Unix(),
	}
	if user.OrganizationID != nil {
		claims["org"] = user.OrganizationID.String()
	}
	if user.EmployeeID != nil {
		claims["emp"] = user.EmployeeID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.Unauthorized("malformed token claims")
	}

	rd := &requestdata.RequestData{}
	if sub, ok := claims["sub"].(string); ok {
		if id, err := uuid.Parse(sub); err == nil {
			rd.UserID = id
		}
	}
	if rd.UserID == uuid.Nil {
		return ctx, apierr.Unauthorized("token has no subject")
	}
	if roleStr, ok := claims["role"].(string); ok {
		if role, err := types.ParseRole(roleStr); err == nil {
			rd.Role = role
		}
	}
	if orgStr, ok := claims["org"].(string); ok {
		if id, err := uuid.Parse(orgStr); err == nil {
			rd.OrganizationID = id
		}
	}
	if empStr, ok := claims["emp"].(string); ok {
		if id, err := uuid.Parse(empStr); err == nil {
			rd.EmployeeID = id
		}
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"burgerpos/internal/apierror"
	"burgerpos/internal/config"
	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("Usuário ou senha inválidos")

// passwordCost is lowered in tests.
var passwordCost = 12

// ActorSource is the read-only view of the identity store used by the core.
type ActorSource interface {
	CurrentActor(ctx context.Context) *model.Actor
}

type AuthService interface {
	ActorSource
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout clears the session pointer. An open shift stays open.
	Logout(ctx context.Context) error
	// ValidateSession rejects tokens issued to anyone but the logged-in user.
	ValidateSession(ctx context.Context, userID uuid.UUID) error

	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) []dto.UserResponse
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	SeedDefaults(adminPassword, cashierPassword string) error
	Export() (users []model.User, currentUserID *uuid.UUID)
	Restore(users []model.User, currentUserID *uuid.UUID)
}

type authService struct {
	mu      sync.RWMutex
	users   []model.User
	current *uuid.UUID
	cfg     *config.Config
	bus     *EventBus
	now     func() time.Time
}

func NewAuthService(cfg *config.Config, bus *EventBus) AuthService {
	return &authService{cfg: cfg, bus: bus, now: time.Now}
}

// ── Session ───────────────────────────────────────────────────────────────────

func (s *authService) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	s.mu.RLock()
	user, ok := s.findByUsernameLocked(req.Username)
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := user.ID
	s.current = &id
	s.mu.Unlock()

	log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("auth: login")
	s.bus.Publish(model.EventSessionChanged, userToResponse(user))

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        userToResponse(user),
	}, nil
}

func (s *authService) Logout(_ context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.bus.Publish(model.EventSessionChanged, nil)
	return nil
}

func (s *authService) CurrentActor(_ context.Context) *model.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	if i := s.indexByID(*s.current); i >= 0 {
		a := s.users[i].Actor()
		return &a
	}
	return nil
}

func (s *authService) ValidateSession(_ context.Context, userID uuid.UUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || *s.current != userID {
		return apierror.Precondition("Sessão encerrada. Faça login novamente")
	}
	return nil
}

func (s *authService) generateToken(user model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      user.Role,
		"exp":      s.now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":      s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *authService) CreateUser(_ context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apierror.Validation("Usuário e nome são obrigatórios")
	}
	if !validRole(req.Role) {
		return nil, apierror.Validation("Perfil inválido")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, taken := s.findByUsernameLocked(username); taken {
		s.mu.Unlock()
		return nil, apierror.Conflict("Usuário %s já existe", username)
	}
	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		PasswordHash: string(hash),
	}
	s.users = append(s.users, user)
	s.mu.Unlock()

	s.bus.Publish(model.EventUsersChanged, userToResponse(user))
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) ListUsers(_ context.Context) []dto.UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dto.UserResponse, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, userToResponse(u))
	}
	return out
}

func (s *authService) UpdateUser(_ context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Role != "" && !validRole(req.Role) {
		return nil, apierror.Validation("Perfil inválido")
	}
	var hash []byte
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	s.mu.Lock()
	i := s.indexByID(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, apierror.NotFound("Usuário não encontrado")
	}
	if username := strings.TrimSpace(req.Username); username != "" && username != s.users[i].Username {
		if _, taken := s.findByUsernameLocked(username); taken {
			s.mu.Unlock()
			return nil, apierror.Conflict("Usuário %s já existe", username)
		}
		s.users[i].Username = username
	}
	if req.Name != "" {
		s.users[i].Name = strings.TrimSpace(req.Name)
	}
	if req.Role != "" {
		if s.users[i].Role == model.RoleAdmin && req.Role != model.RoleAdmin && s.adminCountLocked() == 1 {
			s.mu.Unlock()
			return nil, apierror.Conflict("O sistema precisa de pelo menos um administrador")
		}
		s.users[i].Role = req.Role
	}
	if hash != nil {
		s.users[i].PasswordHash = string(hash)
	}
	user := s.users[i]
	s.mu.Unlock()

	s.bus.Publish(model.EventUsersChanged, userToResponse(user))
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.indexByID(id)
	if i < 0 {
		s.mu.Unlock()
		return apierror.NotFound("Usuário não encontrado")
	}
	if s.current != nil && *s.current == id {
		s.mu.Unlock()
		return apierror.Conflict("Não é possível excluir o usuário logado")
	}
	if s.users[i].Role == model.RoleAdmin && s.adminCountLocked() == 1 {
		s.mu.Unlock()
		return apierror.Conflict("O sistema precisa de pelo menos um administrador")
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	s.mu.Unlock()

	s.bus.Publish(model.EventUsersChanged, map[string]string{"deleted": id.String()})
	return nil
}

// ── Persistence ───────────────────────────────────────────────────────────────

func (s *authService) SeedDefaults(adminPassword, cashierPassword string) error {
	users := make([]model.User, 0, len(defaultUsers))
	for _, su := range defaultUsers {
		pw := cashierPassword
		if su.role == model.RoleAdmin {
			pw = adminPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), passwordCost)
		if err != nil {
			return err
		}
		users = append(users, model.User{
			ID:           uuid.New(),
			Username:     su.username,
			Name:         su.name,
			Role:         su.role,
			PasswordHash: string(hash),
		})
	}
	s.mu.Lock()
	s.users = users
	s.current = nil
	s.mu.Unlock()
	return nil
}

func (s *authService) Export() ([]model.User, *uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var current *uuid.UUID
	if s.current != nil {
		id := *s.current
		current = &id
	}
	return append([]model.User(nil), s.users...), current
}

func (s *authService) Restore(users []model.User, currentUserID *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]model.User(nil), users...)
	s.current = nil
	if currentUserID != nil && s.indexByID(*currentUserID) >= 0 {
		id := *currentUserID
		s.current = &id
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *authService) findByUsernameLocked(username string) (model.User, bool) {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *authService) indexByID(id uuid.UUID) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *authService) adminCountLocked() int {
	n := 0
	for _, u := range s.users {
		if u.Role == model.RoleAdmin {
			n++
		}
	}
	return n
}

func validRole(r string) bool {
	return r == model.RoleAdmin || r == model.RoleCashier
}

func userToResponse(u model.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID.String(), Username: u.Username, Name: u.Name, Role: u.Role}
}

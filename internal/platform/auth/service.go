package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStaff   = "staff"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Bootstrap admin created by the one-time setup endpoint. Documented default,
// must be rotated after first login.
const (
	DefaultAdminEmail    = "admin@company.com"
	DefaultAdminPassword = "admin"
	DefaultAdminEmpID    = "ADMIN001"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrEmployeeIDTaken = errors.New("employee id already registered")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrDisabled        = errors.New("account disabled")
)

func ValidRole(r string) bool {
	return r == RoleStaff || r == RoleManager || r == RoleAdmin
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Service struct {
	store    AccountStore
	secret   []byte
	tokenTTL time.Duration
	clock    Clock
	id       IDGen
}

func NewService(sqldb *sql.DB, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		store:    NewStore(sqldb),
		secret:   secret,
		tokenTTL: tokenTTL,
		clock:    realClock{},
		id:       ulidGen{},
	}
}

type LoginResult struct {
	Token     string
	StaffID   string
	Role      string
	FirstName string
	LastName  string
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAuthFailed
	}
	if acct.IsDisabled {
		return nil, ErrDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"exp":  s.clock.Now().Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     signed,
		StaffID:   acct.ID,
		Role:      acct.Role,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
	}, nil
}

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	EmployeeID string
	Department *string
	Position   *string
}

// Register is the self-service sign-up path: the profile is always created
// with the staff role. Privileged roles go through CreateUser.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	return s.create(ctx, in, RoleStaff)
}

// CreateUser is the admin provisioning path and accepts an explicit role.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput, role string) (string, error) {
	if !ValidRole(role) {
		return "", errors.New("invalid role")
	}
	return s.create(ctx, in, role)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	id, err := s.id.New()
	if err != nil {
		return "", err
	}

	acct := &Account{
		ID:           id,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	prof := &NewProfile{
		EmployeeID: in.EmployeeID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Department: in.Department,
		Position:   in.Position,
		Role:       role,
		HireDate:   s.clock.Now().UTC().Format("2006-01-02"),
	}
	if err := s.store.CreateWithProfile(ctx, acct, prof); err != nil {
		return "", err
	}
	return id, nil
}

// Setup creates the documented bootstrap admin. Returns created=false when
// the admin already exists; callers surface the fixed credentials either way.
func (s *Service) Setup(ctx context.Context) (bool, error) {
	existing, err := s.store.GetByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	dept := "Management"
	pos := "Administrator"
	_, err = s.CreateUser(ctx, RegisterInput{
		Email:      DefaultAdminEmail,
		Password:   DefaultAdminPassword,
		FirstName:  "System",
		LastName:   "Administrator",
		EmployeeID: DefaultAdminEmpID,
		Department: &dept,
		Position:   &pos,
	}, RoleAdmin)
	if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrEmployeeIDTaken) {
		// Lost the race against a concurrent setup call.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]Account, error) {
	return s.store.List(ctx)
}

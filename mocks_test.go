package register_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/goliatone/go-register"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockRepositoryManager implements register.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx runs the closure against a zero transaction so handler logic
// can be exercised without a database. A non nil preset error short
// circuits the closure, mimicking a transaction that failed to open.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Users() register.Users {
	args := m.Called()
	return args.Get(0).(register.Users)
}

func (m *MockRepositoryManager) Roles() register.Roles {
	args := m.Called()
	return args.Get(0).(register.Roles)
}

func (m *MockRepositoryManager) ActivationTokens() register.ActivationTokens {
	args := m.Called()
	return args.Get(0).(register.ActivationTokens)
}

// MockUsers implements register.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, user *register.User) (*register.User, error) {
	args := m.Called(ctx, user)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *register.User) (*register.User, error) {
	args := m.Called(ctx, tx, user)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *register.User, criteria ...repository.InsertCriteria) (*register.User, error) {
	args := m.Called(ctx, record)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *register.User, criteria ...repository.InsertCriteria) (*register.User, error) {
	args := m.Called(ctx, tx, record)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*register.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*register.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*register.User, error) {
	args := m.Called(ctx, tx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) AssignRoleTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tx, userID, roleID)
	return args.Error(0)
}

func (m *MockUsers) Activate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func userArg(args mock.Arguments, index int) *register.User {
	if v := args.Get(index); v != nil {
		return v.(*register.User)
	}
	return nil
}

// MockRoles implements register.Roles
type MockRoles struct {
	mock.Mock
}

func (m *MockRoles) GetByName(ctx context.Context, name string) (*register.Role, error) {
	args := m.Called(ctx, name)
	return roleArg(args, 0), args.Error(1)
}

func (m *MockRoles) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*register.Role, error) {
	args := m.Called(ctx, tx, name)
	return roleArg(args, 0), args.Error(1)
}

func roleArg(args mock.Arguments, index int) *register.Role {
	if v := args.Get(index); v != nil {
		return v.(*register.Role)
	}
	return nil
}

// MockActivationTokens implements register.ActivationTokens
type MockActivationTokens struct {
	mock.Mock
}

func (m *MockActivationTokens) Create(ctx context.Context, record *register.ActivationToken, criteria ...repository.InsertCriteria) (*register.ActivationToken, error) {
	args := m.Called(ctx, record)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockActivationTokens) CreateTx(ctx context.Context, tx bun.IDB, record *register.ActivationToken, criteria ...repository.InsertCriteria) (*register.ActivationToken, error) {
	args := m.Called(ctx, tx, record)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockActivationTokens) GetByCode(ctx context.Context, code string) (*register.ActivationToken, error) {
	args := m.Called(ctx, code)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockActivationTokens) GetByCodeTx(ctx context.Context, tx bun.IDB, code string) (*register.ActivationToken, error) {
	args := m.Called(ctx, tx, code)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockActivationTokens) MarkValidated(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockActivationTokens) MarkValidatedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, tx, id, at)
	return args.Error(0)
}

func tokenArg(args mock.Arguments, index int) *register.ActivationToken {
	if v := args.Get(index); v != nil {
		return v.(*register.ActivationToken)
	}
	return nil
}

// MockMailer implements register.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendActivationEmail(ctx context.Context, email register.ActivationEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// recordingSink captures activity events for assertions
type recordingSink struct {
	mu     sync.Mutex
	events []register.ActivityEvent
}

func (s *recordingSink) Record(ctx context.Context, event register.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Events() []register.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]register.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// testConfig implements register.Config
type testConfig struct {
	signingKey        string
	tokenExpiration   int
	issuer            string
	audience          []string
	activationBaseURL string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:        "test-signing-key",
		tokenExpiration:   1,
		issuer:            "test-issuer",
		audience:          []string{"test-audience"},
		activationBaseURL: "https://app.example.com/activate",
	}
}

func (c testConfig) GetSigningKey() string        { return c.signingKey }
func (c testConfig) GetTokenExpiration() int      { return c.tokenExpiration }
func (c testConfig) GetIssuer() string            { return c.issuer }
func (c testConfig) GetAudience() []string        { return c.audience }
func (c testConfig) GetActivationBaseURL() string { return c.activationBaseURL }

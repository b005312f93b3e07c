package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gophmart/gophmart/internal/client/api"
	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/client/storage"
	"github.com/gophmart/gophmart/internal/common"
	"github.com/gophmart/gophmart/internal/dbx"
	"github.com/gophmart/gophmart/internal/logging"
)

// RemoteAuth is the slice of the remote boundary the manager needs.
type RemoteAuth interface {
	Login(ctx context.Context, email, password string, role models.Role) (api.Credentials, error)
	Signup(ctx context.Context, req api.SignupRequest, role models.Role) error
	VerifyOTP(ctx context.Context, email, otp string, role models.Role) error
	ResendOTP(ctx context.Context, email string, role models.Role) error
	WhoAmI(ctx context.Context) (*models.UserProfile, error)
}

// Manager is the exclusive owner of the Session. All other components read
// it through Snapshot/Token/Require or react to it through Subscribe; none
// of them mutate it.
//
// Concurrent Login calls are not deduplicated; the caller must not issue
// overlapping logins.
type Manager struct {
	remote RemoteAuth
	db     *sql.DB
	log    logging.Logger

	mu      sync.Mutex
	state   State
	token   string
	user    *models.UserProfile
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewManager(remote RemoteAuth, db *sql.DB, log logging.Logger) *Manager {
	return &Manager{
		remote: remote,
		db:     db,
		log:    log,
		state:  StateUninitialized,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn to be invoked on every session transition with the
// new snapshot. The returned function cancels the subscription and is safe
// to call more than once.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Token returns the current bearer token, or "" when anonymous. It is the
// token source wired into the remote boundary.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Require fails with an authorization error unless the session is
// authenticated with the given role. No network call is involved.
func (m *Manager) Require(role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.user == nil {
		return api.NewAuthorizationError("not authenticated")
	}
	if m.user.Role != role {
		return api.NewAuthorizationError(fmt.Sprintf("requires role %q, session is %q", role, m.user.Role))
	}
	return nil
}

// RequireAny is Require over a set of acceptable roles.
func (m *Manager) RequireAny(roles ...models.Role) error {
	m.mu.Lock()
	state, user := m.state, m.user
	m.mu.Unlock()

	if state != StateAuthenticated || user == nil {
		return api.NewAuthorizationError("not authenticated")
	}
	for _, role := range roles {
		if user.Role == role {
			return nil
		}
	}
	return api.NewAuthorizationError(fmt.Sprintf("role %q not permitted", user.Role))
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, Token: m.token, User: m.user}
}

// transition replaces the session state and notifies subscribers. Callbacks
// run outside the lock so subscribers may call back into the manager.
func (m *Manager) transition(state State, token string, user *models.UserProfile) {
	m.mu.Lock()
	m.state = state
	m.token = token
	m.user = user
	snap := m.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (m *Manager) repo() storage.Repository {
	return storage.NewSQLiteRepository(m.db)
}

// persistSession writes token and user to durable storage in a single
// transaction, so they are never stored one without the other.
func (m *Manager) persistSession(ctx context.Context, token string, user *models.UserProfile) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := storage.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.KeyAuthToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.KeyAuthUser, raw)
	})
}

// clearPersisted removes both session keys together.
func (m *Manager) clearPersisted(ctx context.Context) {
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := storage.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.KeyAuthToken); err != nil {
			return err
		}
		return repo.Delete(ctx, common.KeyAuthUser)
	})
	if err != nil {
		// In-memory state is cleared regardless; stale rows are healed by the
		// validation probe on next startup.
		m.log.Error(ctx, "failed to clear persisted session", "error", err)
	}
}

// Initialize runs once at process start. It reads the persisted session; if
// present, it optimistically authenticates with the cached identity and then
// validates the token against the remote, replacing the identity with the
// authoritative copy. Any validation failure clears the persisted state and
// degrades to Anonymous; Initialize never fails for probe errors.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return common.ErrAlreadyInitialized
	}
	m.mu.Unlock()

	m.transition(StateInitializing, "", nil)

	repo := m.repo()
	token, err := repo.Get(ctx, common.KeyAuthToken)
	if err != nil {
		m.log.Warn(ctx, "failed to read persisted token", "error", err)
	}
	rawUser, err := repo.Get(ctx, common.KeyAuthUser)
	if err != nil {
		m.log.Warn(ctx, "failed to read persisted user", "error", err)
	}

	if len(token) == 0 || len(rawUser) == 0 {
		// Nothing (or half a session) persisted; start anonymous.
		if len(token) != 0 || len(rawUser) != 0 {
			m.clearPersisted(ctx)
		}
		m.transition(StateAnonymous, "", nil)
		return nil
	}

	var cached models.UserProfile
	if err := json.Unmarshal(rawUser, &cached); err != nil {
		m.log.Warn(ctx, "persisted user is malformed, discarding session", "error", err)
		m.clearPersisted(ctx)
		m.transition(StateAnonymous, "", nil)
		return nil
	}

	// Optimistic: show the cached identity right away, then verify.
	m.transition(StateAuthenticated, string(token), &cached)

	fresh, err := m.remote.WhoAmI(ctx)
	if err != nil {
		m.log.Warn(ctx, "session validation failed, signing out", "error", err)
		m.clearPersisted(ctx)
		m.transition(StateAnonymous, "", nil)
		return nil
	}

	if err := m.persistSession(ctx, string(token), fresh); err != nil {
		m.log.Warn(ctx, "failed to persist refreshed user", "error", err)
	}
	m.transition(StateAuthenticated, string(token), fresh)
	return nil
}

// Login authenticates against the remote and establishes the session. On
// failure the session is left unchanged and the error is returned.
func (m *Manager) Login(ctx context.Context, email, password string, role models.Role) error {
	creds, err := m.remote.Login(ctx, email, password, role)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return m.SetSession(ctx, creds.Token, creds.User)
}

// Signup submits an account application. It does not establish a session.
func (m *Manager) Signup(ctx context.Context, req api.SignupRequest, role models.Role) error {
	return m.remote.Signup(ctx, req, role)
}

// VerifyOTP confirms the signup one-time code. The caller follows up with
// Login.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string, role models.Role) error {
	return m.remote.VerifyOTP(ctx, email, otp, role)
}

// ResendOTP requests a fresh one-time code.
func (m *Manager) ResendOTP(ctx context.Context, email string, role models.Role) error {
	return m.remote.ResendOTP(ctx, email, role)
}

// SetSession establishes the session from an externally obtained credential
// pair, persisting both parts together. Token and user must both be present.
func (m *Manager) SetSession(ctx context.Context, token string, user *models.UserProfile) error {
	if token == "" || user == nil {
		return common.ErrIncompleteSession
	}
	if err := m.persistSession(ctx, token, user); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.transition(StateAuthenticated, token, user)
	return nil
}

// ClearSession drops the session from memory and durable storage. It is
// idempotent; subscribers are notified only when something actually changed.
func (m *Manager) ClearSession(ctx context.Context) {
	m.clearPersisted(ctx)

	m.mu.Lock()
	changed := m.state != StateAnonymous || m.token != "" || m.user != nil
	m.mu.Unlock()
	if !changed {
		return
	}
	m.transition(StateAnonymous, "", nil)
}

// UpdateUser shallow-merges patch into the current identity and persists it.
// A no-op when anonymous. The token is never touched.
func (m *Manager) UpdateUser(ctx context.Context, patch models.ProfilePatch) error {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil {
		m.mu.Unlock()
		return nil
	}
	token := m.token
	updated := patch.Apply(*m.user)
	m.mu.Unlock()

	if err := m.persistSession(ctx, token, &updated); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	m.transition(StateAuthenticated, token, &updated)
	return nil
}

// Logout ends the session. Navigation afterwards is the caller's concern.
func (m *Manager) Logout(ctx context.Context) {
	m.log.Info(ctx, "logging out")
	m.ClearSession(ctx)
}

// HandleAuthRejected is the clearAuth hook registered on the remote
// boundary: a credential rejected on any request tears the session down.
func (m *Manager) HandleAuthRejected() {
	m.ClearSession(context.Background())
}

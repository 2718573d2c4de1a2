package setup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ghconnect/pkg/config"
	"ghconnect/pkg/github"
)

// Step is the currently active step of the connection flow.
type Step int

const (
	// StepChooseMode asks the operator to pick cloud or self-managed.
	StepChooseMode Step = iota
	// StepCloudAuth waits for an OAuth authorization result.
	StepCloudAuth
	// StepSelfManagedAuth waits for host credentials to be validated.
	StepSelfManagedAuth
	// StepAccounts shows the reconciled account list.
	StepAccounts
	// StepThrottled is a dead end entered when GitHub reports the rate
	// limit exhausted; the operator re-enters the flow after ResumeAt.
	StepThrottled
)

// String returns a short operator-facing name for the step.
func (s Step) String() string {
	switch s {
	case StepChooseMode:
		return "choose connection mode"
	case StepCloudAuth:
		return "awaiting OAuth authorization"
	case StepSelfManagedAuth:
		return "awaiting host credentials"
	case StepAccounts:
		return "account selection"
	case StepThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// SelfManagedCredentials are the operator-entered credentials for a
// self-managed host. Either APIKey or Username/Password must be set.
type SelfManagedCredentials struct {
	URL      string
	Username string
	Password string
	APIKey   string
}

// Options wires the machine's collaborators.
type Options struct {
	// Store persists the configuration after every mutation.
	Store config.Store

	// FetcherFor builds an account fetcher from the current credentials.
	FetcherFor func(cfg *config.Config) github.AccountFetcher

	// ValidatorFor builds a credential validator for self-managed
	// credentials being checked.
	ValidatorFor func(creds SelfManagedCredentials) (github.CredentialValidator, error)

	// Notify is called whenever the installable predicate changes.
	Notify func(installable bool)
}

// Machine drives the connection flow as an explicit state machine. Every
// transition mutates the shared configuration, persists it, and
// re-evaluates install eligibility; each of those read-modify-writes is a
// critical section so overlapping fetch completions apply atomically.
type Machine struct {
	mu   sync.Mutex
	cfg  *config.Config
	opts Options

	step     Step
	resumeAt time.Time
	eligible *bool
}

// NewMachine creates a machine over the shared configuration, rehydrating
// the active step from previously persisted state.
func NewMachine(cfg *config.Config, opts Options) *Machine {
	if opts.FetcherFor == nil {
		opts.FetcherFor = DefaultFetcherFor
	}
	if opts.ValidatorFor == nil {
		opts.ValidatorFor = DefaultValidatorFor
	}
	m := &Machine{cfg: cfg, opts: opts}
	m.step = rehydrate(cfg)
	return m
}

func rehydrate(cfg *config.Config) Step {
	switch cfg.IntegrationType {
	case config.IntegrationTypeCloud:
		if cfg.HasAuth() {
			return StepAccounts
		}
		return StepCloudAuth
	case config.IntegrationTypeSelfManaged:
		if cfg.HasAuth() {
			return StepAccounts
		}
		return StepSelfManagedAuth
	default:
		return StepChooseMode
	}
}

// Step returns the active step.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// ResumeAt returns the time before which requests will keep failing while
// the machine is throttled.
func (m *Machine) ResumeAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumeAt
}

// Config returns the shared configuration the machine mutates.
func (m *Machine) Config() *config.Config {
	return m.cfg
}

// Installable reports whether installation may currently proceed.
func (m *Machine) Installable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installableLocked()
}

func (m *Machine) installableLocked() bool {
	return m.cfg.Installed || len(m.cfg.Accounts) > 0
}

// ChooseMode records the operator's connection-mode choice and advances to
// the matching authentication step. Choosing the already-active mode is a
// no-op; switching modes restarts authentication for the new branch.
func (m *Machine) ChooseMode(t config.IntegrationType) error {
	if t != config.IntegrationTypeCloud && t != config.IntegrationTypeSelfManaged {
		return fmt.Errorf("unknown integration type %q", t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.IntegrationType = t
	m.step = rehydrate(m.cfg)
	return m.applyLocked()
}

// HandleAuthorization applies an externally supplied OAuth authorization
// result. Both this and HandleRedirect write the same auth shape; whichever
// fires first wins and firing again with identical data is a no-op.
func (m *Machine) HandleAuthorization(auth config.OAuth2Auth) error {
	if auth.AccessToken == "" {
		return fmt.Errorf("authorization result has no access token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.IntegrationType = config.IntegrationTypeCloud
	m.cfg.OAuth2Auth = &auth
	m.step = StepAccounts
	return m.applyLocked()
}

// HandleRedirect rehydrates authentication from an OAuth redirect callback
// URL. A missing or malformed profile parameter leaves all state unchanged
// and reports false; it is "not yet authenticated", not an error.
func (m *Machine) HandleRedirect(rawURL string) (bool, error) {
	auth, ok := ParseRedirectProfile(rawURL)
	if !ok {
		return false, nil
	}
	if err := m.HandleAuthorization(*auth); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateSelfManaged checks the entered credentials against the target
// host. On success they are written into the configuration and the flow
// advances; on failure the state is unchanged and the reason is returned
// for the operator.
func (m *Machine) ValidateSelfManaged(ctx context.Context, creds SelfManagedCredentials) error {
	if creds.URL == "" {
		return fmt.Errorf("host URL is required")
	}
	if creds.APIKey == "" && (creds.Username == "" || creds.Password == "") {
		return fmt.Errorf("an API key or username and password are required")
	}

	validator, err := m.opts.ValidatorFor(creds)
	if err != nil {
		return err
	}
	if _, err := validator.Validate(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.IntegrationType = config.IntegrationTypeSelfManaged
	if creds.APIKey != "" {
		m.cfg.APIKeyAuth = &config.APIKeyAuth{URL: creds.URL, APIKey: creds.APIKey}
	} else {
		m.cfg.BasicAuth = &config.BasicAuth{URL: creds.URL, Username: creds.Username, Password: creds.Password}
	}
	m.step = StepAccounts
	return m.applyLocked()
}

// RequireReauth re-enters the authentication step for the current branch
// without resetting the chosen integration type.
func (m *Machine) RequireReauth() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.cfg.IntegrationType {
	case config.IntegrationTypeCloud:
		m.cfg.OAuth2Auth = nil
		m.step = StepCloudAuth
	case config.IntegrationTypeSelfManaged:
		m.cfg.BasicAuth = nil
		m.cfg.APIKeyAuth = nil
		m.step = StepSelfManagedAuth
	default:
		return fmt.Errorf("no integration type chosen")
	}
	return m.applyLocked()
}

// RefreshAccounts fetches the viewer and its organizations, reconciles them
// with the persisted selection, persists the result, and returns the
// display sequence. A throttled response parks the machine in the
// throttled dead end instead of retrying.
func (m *Machine) RefreshAccounts(ctx context.Context) ([]config.Account, error) {
	if step := m.Step(); step != StepAccounts {
		return nil, fmt.Errorf("accounts are not available while in step %q", step)
	}

	viewer, orgs, err := m.opts.FetcherFor(m.cfg).FetchViewer(ctx)
	if err != nil {
		if resume, ok := github.ThrottledUntil(err); ok {
			m.throttle(resume)
		}
		return nil, err
	}

	fresh := make([]config.Account, 0, len(orgs)+1)
	fresh = append(fresh, *viewer)
	fresh = append(fresh, orgs...)

	m.mu.Lock()
	defer m.mu.Unlock()

	reconciler := github.NewReconciler(m.cfg.Installed)
	accounts, _ := reconciler.Reconcile(m.cfg, fresh)
	if err := m.applyLocked(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// AddPublicAccount resolves a manually entered login or URL and adds it to
// the selection set. A user that does not exist is reported back without
// any state written.
func (m *Machine) AddPublicAccount(ctx context.Context, raw string) (*config.Account, error) {
	login := github.NormalizeLogin(raw)
	acct, err := m.opts.FetcherFor(m.cfg).FetchAccount(ctx, login)
	if err != nil {
		if github.IsNotFound(err) {
			return nil, fmt.Errorf("account %q doesn't exist", login)
		}
		if resume, ok := github.ThrottledUntil(err); ok {
			m.throttle(resume)
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Accounts == nil {
		m.cfg.Accounts = make(map[string]*config.Account)
	}
	if existing, ok := m.cfg.Accounts[acct.ID]; ok {
		return existing, nil
	}
	stored := *acct
	m.cfg.Accounts[acct.ID] = &stored
	if err := m.applyLocked(); err != nil {
		return nil, err
	}
	return acct, nil
}

// SetSelected updates the sync selection for a persisted account.
func (m *Machine) SetSelected(accountID string, selected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.cfg.Accounts[accountID]
	if !ok {
		return fmt.Errorf("unknown account %q", accountID)
	}
	acct.Selected = selected
	return m.applyLocked()
}

// SelectAccount applies a selection for a display record, inserting it
// into the persisted set when absent. Post-install, freshly discovered
// organizations are not written back by reconciliation, so selecting one
// has to add it here.
func (m *Machine) SelectAccount(acct config.Account, selected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Accounts == nil {
		m.cfg.Accounts = make(map[string]*config.Account)
	}
	stored, ok := m.cfg.Accounts[acct.ID]
	if !ok {
		copied := acct
		stored = &copied
		m.cfg.Accounts[acct.ID] = stored
	}
	stored.Selected = selected
	return m.applyLocked()
}

// SetExclusion stores the exclusion pattern for an account and persists.
func (m *Machine) SetExclusion(accountID, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.SetExclusion(accountID, pattern)
	return m.applyLocked()
}

// Exclusion returns the stored exclusion pattern for an account.
func (m *Machine) Exclusion(accountID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Exclusion(accountID)
}

func (m *Machine) throttle(resumeAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = StepThrottled
	m.resumeAt = resumeAt
}

// applyLocked is the single apply-and-persist funnel: it saves the
// configuration and notifies the host when install eligibility changed.
// Callers must hold m.mu.
func (m *Machine) applyLocked() error {
	if m.opts.Store != nil {
		if err := m.opts.Store.Save(m.cfg); err != nil {
			return fmt.Errorf("failed to persist configuration: %w", err)
		}
	}

	eligible := m.installableLocked()
	if m.eligible == nil || *m.eligible != eligible {
		m.eligible = &eligible
		if m.opts.Notify != nil {
			m.opts.Notify(eligible)
		}
	}
	return nil
}

// DefaultFetcherFor builds an account fetcher from the credentials in the
// configuration.
func DefaultFetcherFor(cfg *config.Config) github.AccountFetcher {
	switch cfg.IntegrationType {
	case config.IntegrationTypeSelfManaged:
		switch {
		case cfg.APIKeyAuth != nil:
			return github.NewFetcher(github.NewClientForHost(cfg.APIKeyAuth.URL, cfg.APIKeyAuth.APIKey))
		case cfg.BasicAuth != nil:
			return github.NewFetcher(github.NewClientForHost(cfg.BasicAuth.URL, cfg.BasicAuth.Password))
		}
	case config.IntegrationTypeCloud:
		if cfg.OAuth2Auth != nil {
			return github.NewFetcher(github.NewClient(cfg.OAuth2Auth.AccessToken))
		}
	}
	return github.NewFetcher(github.NewClient(""))
}

// DefaultValidatorFor builds a credential validator for a self-managed
// host from operator-entered credentials.
func DefaultValidatorFor(creds SelfManagedCredentials) (github.CredentialValidator, error) {
	token := creds.APIKey
	if token == "" {
		token = creds.Password
	}
	return github.NewValidatorForHost(creds.URL, token)
}

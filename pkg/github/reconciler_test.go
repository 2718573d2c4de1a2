package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghconnect/pkg/config"
)

func freshViewerAndOrg() []config.Account {
	return []config.Account{
		{ID: "octocat", Name: "The Octocat", Type: config.AccountTypeUser, TotalCount: 8},
		{ID: "acme", Name: "Acme Corp", Type: config.AccountTypeOrg, TotalCount: 42},
	}
}

func TestReconcilePreInstallWritesFreshEntries(t *testing.T) {
	cfg := &config.Config{}
	r := NewReconciler(false)

	out, installable := r.Reconcile(cfg, freshViewerAndOrg())

	require.Len(t, out, 2)
	assert.Equal(t, "octocat", out[0].ID)
	assert.Equal(t, "acme", out[1].ID)
	assert.True(t, installable)
	assert.Len(t, cfg.Accounts, 2)
	assert.Equal(t, 42, cfg.Accounts["acme"].TotalCount)
}

func TestReconcilePreInstallLastFetchWins(t *testing.T) {
	cfg := &config.Config{
		Accounts: map[string]*config.Account{
			"acme": {ID: "acme", TotalCount: 10, Selected: true, Type: config.AccountTypeOrg},
		},
	}
	r := NewReconciler(false)

	out, _ := r.Reconcile(cfg, freshViewerAndOrg())

	// Before installation the fresh copy overwrites everything, selection
	// state included.
	require.Len(t, out, 2)
	assert.Equal(t, 42, cfg.Accounts["acme"].TotalCount)
	assert.False(t, cfg.Accounts["acme"].Selected)
}

func TestReconcilePostInstallPreservesSelection(t *testing.T) {
	cfg := &config.Config{
		Installed: true,
		Accounts: map[string]*config.Account{
			"acme": {ID: "acme", TotalCount: 10, Selected: false, Type: config.AccountTypeOrg},
		},
	}
	r := NewReconciler(true)

	out, installable := r.Reconcile(cfg, freshViewerAndOrg())

	require.Len(t, out, 2)
	assert.True(t, installable)

	// Fresh profile data shows through, the persisted choice does not move.
	var acme config.Account
	for _, acct := range out {
		if acct.ID == "acme" {
			acme = acct
		}
	}
	assert.Equal(t, 42, acme.TotalCount)
	assert.False(t, acme.Selected)

	// The persisted record itself is untouched post-install.
	assert.Equal(t, 10, cfg.Accounts["acme"].TotalCount)
}

func TestReconcilePostInstallNewOrgNotPersisted(t *testing.T) {
	cfg := &config.Config{
		Installed: true,
		Accounts:  map[string]*config.Account{},
	}
	r := NewReconciler(true)

	out, _ := r.Reconcile(cfg, freshViewerAndOrg())

	// Post-install, newly discovered accounts are displayed but not
	// written back until the operator selects them.
	assert.Len(t, out, 2)
	assert.Empty(t, cfg.Accounts)
}

func TestReconcileRetainsMissingAccounts(t *testing.T) {
	cfg := &config.Config{
		Accounts: map[string]*config.Account{
			"zeta-org":  {ID: "zeta-org", Type: config.AccountTypeOrg, Selected: true},
			"alpha-org": {ID: "alpha-org", Type: config.AccountTypeOrg, Selected: true},
		},
	}
	r := NewReconciler(false)

	fresh := []config.Account{
		{ID: "octocat", Type: config.AccountTypeUser},
	}
	out, _ := r.Reconcile(cfg, fresh)

	// Fresh list first, then retained accounts in sorted key order.
	require.Len(t, out, 3)
	assert.Equal(t, "octocat", out[0].ID)
	assert.Equal(t, "alpha-org", out[1].ID)
	assert.Equal(t, "zeta-org", out[2].ID)
	assert.True(t, out[1].Selected)
}

func TestReconcileIdempotent(t *testing.T) {
	cfg := &config.Config{
		Accounts: map[string]*config.Account{
			"legacy": {ID: "legacy", Type: config.AccountTypeOrg},
		},
	}
	r := NewReconciler(false)

	first, firstOK := r.Reconcile(cfg, freshViewerAndOrg())
	second, secondOK := r.Reconcile(cfg, freshViewerAndOrg())

	assert.Equal(t, first, second)
	assert.Equal(t, firstOK, secondOK)
}

func TestInstallable(t *testing.T) {
	tests := []struct {
		name      string
		installed bool
		accounts  map[string]*config.Account
		expected  bool
	}{
		{
			name:     "empty selection before install",
			expected: false,
		},
		{
			name:     "non-empty selection before install",
			accounts: map[string]*config.Account{"octocat": {ID: "octocat"}},
			expected: true,
		},
		{
			name:      "installed with empty selection",
			installed: true,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Installed: tt.installed, Accounts: tt.accounts}
			r := NewReconciler(tt.installed)
			assert.Equal(t, tt.expected, r.Installable(cfg))
		})
	}
}

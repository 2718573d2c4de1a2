package github

import (
	"sort"

	"ghconnect/pkg/config"
)

// Reconciler merges a freshly fetched account list with the selection set
// persisted in the configuration. It is re-entrant: reconciling the same
// inputs twice yields the same output sequence and predicate value.
type Reconciler struct {
	// Installed mirrors the host's installed flag. Before installation,
	// fresh data always overwrites persisted copies (last fetch wins);
	// after installation the persisted records keep their selection state.
	Installed bool
}

// NewReconciler creates a reconciler for the given install state.
func NewReconciler(installed bool) *Reconciler {
	return &Reconciler{Installed: installed}
}

// Reconcile merges fresh (viewer first, then organizations in returned
// order) into cfg.Accounts and returns the display sequence together with
// whether installation may proceed.
//
// Persisted accounts absent from the fresh list are retained and appended
// after it in sorted key order: a missing account is assumed to reflect a
// remote membership change, not a discarded choice.
func (r *Reconciler) Reconcile(cfg *config.Config, fresh []config.Account) ([]config.Account, bool) {
	if cfg.Accounts == nil {
		cfg.Accounts = make(map[string]*config.Account)
	}

	out := make([]config.Account, 0, len(fresh)+len(cfg.Accounts))

	for _, acct := range fresh {
		acct := acct
		if !r.Installed {
			stored := acct
			cfg.Accounts[acct.ID] = &stored
		} else if prev, ok := cfg.Accounts[acct.ID]; ok {
			// Post-install refresh: fresh profile data, persisted choice.
			acct.Selected = prev.Selected
		}
		out = append(out, acct)
	}

	seen := make(map[string]bool, len(fresh))
	for _, acct := range fresh {
		seen[acct.ID] = true
	}

	retained := make([]string, 0)
	for id := range cfg.Accounts {
		if !seen[id] {
			retained = append(retained, id)
		}
	}
	sort.Strings(retained)
	for _, id := range retained {
		out = append(out, *cfg.Accounts[id])
	}

	return out, r.Installable(cfg)
}

// Installable reports whether installation may proceed: an installed
// integration is always re-enable-able, otherwise at least one account
// must be in the selection set.
func (r *Reconciler) Installable(cfg *config.Config) bool {
	if r.Installed {
		return true
	}
	return len(cfg.Accounts) > 0
}

package flows

import (
	"context"

	"github.com/MrEthical07/sessiongate/store"
)

// LoadDeps captures session-load dependencies.
type LoadDeps struct {
	// ReadPersistent and ReadTab return the decoded record for their scope, or
	// ok=false when the scope holds none.
	ReadPersistent func(ctx context.Context) (*store.Session, bool, error)
	ReadTab        func(ctx context.Context) (*store.Session, bool, error)

	// OnStoreError observes an absorbed storage failure. The failing scope is
	// treated as holding no session (fail-closed); the error never propagates.
	OnStoreError func(scope store.Scope, err error)
}

// LoadSession resolves the authoritative session across both scopes without
// contacting the backend. Persistent is read first; when both scopes hold a
// record the newer IssuedAt wins, and an exact tie goes to persistent as the
// more durable intent. Storage failures degrade to "scope absent".
func LoadSession(ctx context.Context, d LoadDeps) (*store.Session, bool) {
	persistent := readScope(ctx, d, store.ScopePersistent)
	tab := readScope(ctx, d, store.ScopeTabScoped)

	switch {
	case persistent == nil && tab == nil:
		return nil, false
	case tab == nil:
		persistent.Source = store.SourcePersistent
		return persistent, true
	case persistent == nil:
		tab.Source = store.SourceTabScoped
		return tab, true
	}

	if tab.IssuedAt > persistent.IssuedAt {
		tab.Source = store.SourceTabScoped
		return tab, true
	}

	persistent.Source = store.SourcePersistent
	return persistent, true
}

func readScope(ctx context.Context, d LoadDeps, scope store.Scope) *store.Session {
	read := d.ReadPersistent
	if scope == store.ScopeTabScoped {
		read = d.ReadTab
	}

	sess, ok, err := read(ctx)
	if err != nil {
		if d.OnStoreError != nil {
			d.OnStoreError(scope, err)
		}
		return nil
	}
	if !ok {
		return nil
	}

	return sess
}

// Package registry keeps the in-memory, owner-scoped set of credentials
// and their current codes. The store remains the source of truth;
// mutations here only happen after the corresponding store write
// succeeded, so memory never drifts ahead of persistence.
package registry

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/entity"
)

// resident is a credential loaded into memory with its decoded key and
// the code computed at the most recent tick.
type resident struct {
	cred entity.Credential
	key  []byte

	code      string
	remaining int
	window    int64
	broken    bool
}

// Snapshot is the atomic per-tick view of one owner's codes. Readers
// never observe a mix of tick generations.
type Snapshot struct {
	At    time.Time
	Codes []entity.CredentialCode
}

type subscriber struct {
	ch chan Snapshot
}

// Registry owns every signed-in owner's resident credentials.
//
// One RWMutex guards all credential state: tick recomputation and
// mutations are mutually exclusive, as are hydration and reads.
// Subscribers live behind a separate lock so the SSE fan-out never
// contends with mutations.
type Registry struct {
	mu      sync.RWMutex
	byOwner map[int64]map[int64]*resident
	loaded  map[int64]struct{}

	subMu sync.RWMutex
	subs  map[int64]map[*subscriber]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byOwner: make(map[int64]map[int64]*resident),
		loaded:  make(map[int64]struct{}),
		subs:    make(map[int64]map[*subscriber]struct{}),
	}
}

// IsLoaded reports whether the owner's set has been hydrated from the
// store, distinguishing "empty" from "never loaded".
func (r *Registry) IsLoaded(ownerID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.loaded[ownerID]
	return ok
}

// Hydrate installs the owner's full credential set as read from the
// store, replacing whatever was resident, and computes every code at
// `now` so callers see values immediately.
func (r *Registry) Hydrate(ownerID int64, creds []entity.Credential, now time.Time) {
	set := make(map[int64]*resident, len(creds))
	for _, c := range creds {
		set[c.ID] = newResident(c, now)
	}

	r.mu.Lock()
	r.byOwner[ownerID] = set
	r.loaded[ownerID] = struct{}{}
	r.mu.Unlock()
}

// Evict drops an owner's resident set, forcing a re-hydration on next
// use. Called on sign-out.
func (r *Registry) Evict(ownerID int64) {
	r.mu.Lock()
	delete(r.byOwner, ownerID)
	delete(r.loaded, ownerID)
	r.mu.Unlock()
}

// Put inserts or replaces one credential and computes its code right
// away, so an added credential never waits for the next tick.
func (r *Registry) Put(cred entity.Credential, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.byOwner[cred.OwnerID]
	if set == nil {
		set = make(map[int64]*resident)
		r.byOwner[cred.OwnerID] = set
	}
	set[cred.ID] = newResident(cred, now)
}

// Remove drops one credential from memory. Unknown IDs are a no-op; the
// store delete has already decided whether the credential existed.
func (r *Registry) Remove(ownerID, id int64) {
	r.mu.Lock()
	delete(r.byOwner[ownerID], id)
	r.mu.Unlock()
}

// Get returns the current view of a single credential, or false when it
// is not resident.
func (r *Registry) Get(ownerID, id int64) (entity.CredentialCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byOwner[ownerID][id]
	if !ok {
		return entity.CredentialCode{}, false
	}
	return res.view(), true
}

// Credential returns the resident credential record (including the
// normalized secret) for export flows.
func (r *Registry) Credential(ownerID, id int64) (entity.Credential, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byOwner[ownerID][id]
	if !ok {
		return entity.Credential{}, false
	}
	return res.cred, true
}

// List enumerates an owner's credentials ordered by the sort key (ties
// broken by id) and filtered by a case-insensitive substring match on
// name and issuer. The result is a copy; it never mutates the set.
func (r *Registry) List(ownerID int64, key entity.SortKey, query string) []entity.CredentialCode {
	r.mu.RLock()
	views := make([]entity.CredentialCode, 0, len(r.byOwner[ownerID]))
	for _, res := range r.byOwner[ownerID] {
		views = append(views, res.view())
	}
	r.mu.RUnlock()

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		views = lo.Filter(views, func(v entity.CredentialCode, _ int) bool {
			return strings.Contains(strings.ToLower(v.Name), q) ||
				strings.Contains(strings.ToLower(v.Issuer), q)
		})
	}

	sortViews(views, key)
	return views
}

// Tick recomputes every resident credential whose time window changed
// since the previous tick, refreshes every countdown, and fires one
// snapshot per subscribed owner. Owners without subscribers still get
// their codes refreshed so pull-based reads stay current.
func (r *Registry) Tick(now time.Time) {
	r.mu.Lock()
	for _, set := range r.byOwner {
		for _, res := range set {
			res.refresh(now)
		}
	}

	snapshots := make(map[int64]Snapshot, len(r.byOwner))
	r.subMu.RLock()
	for ownerID := range r.subs {
		set := r.byOwner[ownerID]
		codes := make([]entity.CredentialCode, 0, len(set))
		for _, res := range set {
			codes = append(codes, res.view())
		}
		sortViews(codes, entity.SortKeyName)
		snapshots[ownerID] = Snapshot{At: now, Codes: codes}
	}
	r.subMu.RUnlock()
	r.mu.Unlock()

	r.publish(snapshots)
}

// Subscribe registers a per-tick snapshot stream for one owner. The
// channel closes when done fires. Slow consumers lose snapshots rather
// than stalling the tick.
func (r *Registry) Subscribe(done <-chan struct{}, ownerID int64) <-chan Snapshot {
	sub := &subscriber{ch: make(chan Snapshot, 2)}

	r.subMu.Lock()
	if r.subs[ownerID] == nil {
		r.subs[ownerID] = make(map[*subscriber]struct{})
	}
	r.subs[ownerID][sub] = struct{}{}
	r.subMu.Unlock()

	go func() {
		<-done
		r.subMu.Lock()
		if subs := r.subs[ownerID]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(r.subs, ownerID)
			}
		}
		r.subMu.Unlock()
		close(sub.ch)
	}()

	return sub.ch
}

func (r *Registry) publish(snapshots map[int64]Snapshot) {
	r.subMu.RLock()
	defer r.subMu.RUnlock()

	for ownerID, snap := range snapshots {
		for sub := range r.subs[ownerID] {
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
}

func newResident(cred entity.Credential, now time.Time) *resident {
	res := &resident{cred: cred, window: -1}

	key, err := totp.Decode(cred.Secret)
	if err != nil {
		res.broken = true
		return res
	}
	res.key = key
	res.refresh(now)

	return res
}

// refresh recomputes the countdown every call, and the code only when
// the credential's own window rolled over since the last refresh.
func (res *resident) refresh(now time.Time) {
	if res.broken || res.cred.Period <= 0 {
		res.broken = true
		return
	}

	res.remaining = totp.Remaining(res.cred.Period, now)

	window := now.Unix() / int64(res.cred.Period)
	if window == res.window {
		return
	}

	code, err := totp.Generate(res.key, res.cred.Algorithm, res.cred.Digits, res.cred.Period, now)
	if err != nil {
		res.broken = true
		return
	}

	res.code = code
	res.window = window
}

func (res *resident) view() entity.CredentialCode {
	return entity.CredentialCode{
		ID:        res.cred.ID,
		Name:      res.cred.Name,
		Issuer:    res.cred.Issuer,
		Period:    res.cred.Period,
		Digits:    res.cred.Digits,
		Algorithm: res.cred.Algorithm,
		CreatedAt: res.cred.CreatedAt,
		Code:      res.code,
		Remaining: res.remaining,
		Err:       res.broken,
	}
}

func sortViews(views []entity.CredentialCode, key entity.SortKey) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]

		switch key {
		case entity.SortKeyIssuer:
			if !strings.EqualFold(a.Issuer, b.Issuer) {
				return strings.ToLower(a.Issuer) < strings.ToLower(b.Issuer)
			}
		case entity.SortKeyCreatedAt:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		default:
			if !strings.EqualFold(a.Name, b.Name) {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		}

		return a.ID < b.ID
	})
}

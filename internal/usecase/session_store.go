package usecase

import (
	"sync"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
)

// Session holds one conversation's browsing state. AllListings is the full
// ranked result set and never changes for a given photo; Visible is the
// filtered view the user pages through.
type Session struct {
	Product       *domain.ProductInfo
	AllListings   []domain.Listing
	Visible       []domain.Listing
	FilterEnabled bool
	Page          int
	perPage       int
}

// TotalPages is at least 1 even for an empty visible set.
func (s *Session) TotalPages() int {
	if len(s.Visible) == 0 {
		return 1
	}
	return (len(s.Visible) + s.perPage - 1) / s.perPage
}

// PageItems returns the listings on the current page.
func (s *Session) PageItems() []domain.Listing {
	start := s.Page * s.perPage
	if start >= len(s.Visible) {
		return nil
	}
	end := start + s.perPage
	if end > len(s.Visible) {
		end = len(s.Visible)
	}
	return s.Visible[start:end]
}

// PageOffset is the 1-based index of the first item on the current page,
// used for numbering buttons across pages.
func (s *Session) PageOffset() int {
	return s.Page * s.perPage
}

// applyFilter recomputes the visible view from the retained unfiltered list
// and resets the page. When the filter would remove every listing the
// unfiltered list is shown instead, matching the heuristic's advisory nature.
func (s *Session) applyFilter(enabled bool) {
	s.FilterEnabled = enabled
	s.Page = 0
	if !enabled {
		s.Visible = s.AllListings
		return
	}
	eligible := make([]domain.Listing, 0, len(s.AllListings))
	for _, l := range s.AllListings {
		if l.QualifiesForFreeDelivery() {
			eligible = append(eligible, l)
		}
	}
	if len(eligible) == 0 {
		s.Visible = s.AllListings
		return
	}
	s.Visible = eligible
}

// SessionStore is a thread-safe in-memory store of per-conversation browsing
// state. All state is volatile; a restart drops every session. The store's
// mutex serializes overlapping updates for the same conversation.
type SessionStore struct {
	mu          sync.RWMutex
	perPage     int
	sessions    map[int64]*Session
	generations map[int64]uint64
}

// NewSessionStore creates a new session store
func NewSessionStore(perPage int) *SessionStore {
	if perPage <= 0 {
		perPage = 5
	}
	return &SessionStore{
		perPage:     perPage,
		sessions:    make(map[int64]*Session),
		generations: make(map[int64]uint64),
	}
}

// Create stores a fresh session for the conversation, replacing any previous
// one, and returns a snapshot.
func (st *SessionStore) Create(chatID int64, product *domain.ProductInfo, listings []domain.Listing, filterEnabled bool) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess := &Session{
		Product:     product,
		AllListings: listings,
		perPage:     st.perPage,
	}
	sess.applyFilter(filterEnabled)
	st.sessions[chatID] = sess
	return *sess
}

// CreateIfCurrent stores a fresh session only when token still identifies the
// conversation's latest request. The check and the write happen under one
// lock, so a search finishing after a newer photo arrived can never overwrite
// that photo's session. Returns ok=false when the token is stale.
func (st *SessionStore) CreateIfCurrent(chatID int64, token uint64, product *domain.ProductInfo, listings []domain.Listing, filterEnabled bool) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.generations[chatID] != token {
		return Session{}, false
	}

	sess := &Session{
		Product:     product,
		AllListings: listings,
		perPage:     st.perPage,
	}
	sess.applyFilter(filterEnabled)
	st.sessions[chatID] = sess
	return *sess, true
}

// Get returns a snapshot of the conversation's session.
func (st *SessionStore) Get(chatID int64) (Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[chatID]
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	return *sess, nil
}

// SetFilter recomputes the visible view from the retained unfiltered list.
// It never re-invokes the search client.
func (st *SessionStore) SetFilter(chatID int64, enabled bool) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[chatID]
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	sess.applyFilter(enabled)
	return *sess, nil
}

// ToggleFilter flips the eligibility filter and resets to the first page.
func (st *SessionStore) ToggleFilter(chatID int64) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[chatID]
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	sess.applyFilter(!sess.FilterEnabled)
	return *sess, nil
}

// AdvancePage moves the page offset by delta, clamped to valid bounds.
// Paging past either end is a no-op.
func (st *SessionStore) AdvancePage(chatID int64, delta int) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[chatID]
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}

	page := sess.Page + delta
	if page < 0 {
		page = 0
	}
	if last := sess.TotalPages() - 1; page > last {
		page = last
	}
	sess.Page = page
	return *sess, nil
}

// Clear removes the conversation's session.
func (st *SessionStore) Clear(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
}

// NextGeneration marks the start of a new request for the conversation and
// returns its token. Results computed under an older token are stale: a new
// photo invalidates any in-flight analysis or search for the prior one.
func (st *SessionStore) NextGeneration(chatID int64) uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.generations[chatID]++
	return st.generations[chatID]
}

// Generation returns the conversation's current token without starting a
// new request.
func (st *SessionStore) Generation(chatID int64) uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.generations[chatID]
}

// IsCurrent reports whether the token still identifies the conversation's
// latest request.
func (st *SessionStore) IsCurrent(chatID int64, token uint64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.generations[chatID] == token
}

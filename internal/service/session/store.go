// Package session owns the session list, the active-session pointer,
// and every transcript mutation. Model ids never enter a session
// without passing compatibility resolution first.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashleyhq/chat-backend/internal/model/catalog"
	"github.com/ashleyhq/chat-backend/internal/model/chat"
	"github.com/ashleyhq/chat-backend/internal/service/compat"
)

// TitleRuneLimit caps derived session titles.
const TitleRuneLimit = 30

var ErrSessionNotFound = errors.New("session not found")

// CatalogSource is the read-only slice of the catalog service the
// store needs for resolution. The catalog may be stale or absent; the
// store tolerates both.
type CatalogSource interface {
	Snapshot() (catalog.Catalog, bool)
	Persona(id string) (catalog.PersonaOption, bool)
}

// Store keeps sessions in memory, newest first. At least one session
// exists at all times and the active id always references a live entry.
type Store struct {
	mu               sync.RWMutex
	catalog          CatalogSource
	defaultPersonaID string
	sessions         []*chat.Session
	activeID         string
}

// NewStore bootstraps the store with one default session bound to the
// given persona (typically seeded from the auth identity).
func NewStore(catalogSrc CatalogSource, defaultPersonaID string) *Store {
	s := &Store{
		catalog:          catalogSrc,
		defaultPersonaID: defaultPersonaID,
	}
	first := s.newSessionLocked(defaultPersonaID, catalog.AutoModelID)
	s.sessions = []*chat.Session{first}
	s.activeID = first.ID
	return s
}

func (s *Store) newSessionLocked(personaID, modelID string) *chat.Session {
	persona, _ := s.catalog.Persona(personaID)
	now := time.Now().UTC()
	return &chat.Session{
		ID:        uuid.NewString(),
		Title:     chat.DefaultTitle,
		Messages:  make([]chat.Message, 0, 16),
		PersonaID: personaID,
		ModelID:   compat.ResolveModel(persona, modelID, ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Store) findLocked(id string) (int, *chat.Session) {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i, sess
		}
	}
	return -1, nil
}

func cloneSession(sess *chat.Session) chat.Session {
	out := *sess
	out.Messages = make([]chat.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out
}

// Create inserts a new empty session at the head of the list, copying
// persona and model from the current active session, and activates it.
func (s *Store) Create() chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	personaID := s.defaultPersonaID
	modelID := catalog.AutoModelID
	if _, active := s.findLocked(s.activeID); active != nil {
		personaID = active.PersonaID
		modelID = active.ModelID
	}

	sess := s.newSessionLocked(personaID, modelID)
	s.sessions = append([]*chat.Session{sess}, s.sessions...)
	s.activeID = sess.ID
	return cloneSession(sess)
}

// Select activates the session and re-resolves its stored model id
// against the persona's current allowed set, since the catalog may have
// changed since the session was last active. A missing id mutates
// nothing.
func (s *Store) Select(id string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(id)
	if sess == nil {
		return chat.Session{}, ErrSessionNotFound
	}

	persona, _ := s.catalog.Persona(sess.PersonaID)
	sess.ModelID = compat.ResolveModel(persona, sess.ModelID, "")
	sess.UpdatedAt = time.Now().UTC()
	s.activeID = id
	return cloneSession(sess), nil
}

// Rename sets a manual title. Blank or whitespace-only titles are a
// no-op. A manual rename permanently suppresses the deferred title
// derivation for the session.
func (s *Store) Rename(id, title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(id)
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.Title = trimmed
	sess.ManuallyRenamed = true
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes the session. Deleting the last session synthesizes a
// fresh default one; deleting the active session re-points the active
// id at the first remaining entry. Returns the resulting active
// session.
func (s *Store) Delete(id string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, sess := s.findLocked(id)
	if sess == nil {
		return chat.Session{}, ErrSessionNotFound
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if len(s.sessions) == 0 {
		fresh := s.newSessionLocked(s.defaultPersonaID, catalog.AutoModelID)
		s.sessions = []*chat.Session{fresh}
		s.activeID = fresh.ID
	} else if s.activeID == id {
		s.activeID = s.sessions[0].ID
	}

	_, active := s.findLocked(s.activeID)
	return cloneSession(active), nil
}

// UpdatePersona switches the session's persona and re-resolves the
// model so the stored id is always a member of the new persona's
// allowed set.
func (s *Store) UpdatePersona(id, personaID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(id)
	if sess == nil {
		return chat.Session{}, ErrSessionNotFound
	}

	persona, _ := s.catalog.Persona(personaID)
	sess.PersonaID = personaID
	sess.ModelID = compat.ResolveModel(persona, sess.ModelID, sess.ModelID)
	sess.UpdatedAt = time.Now().UTC()
	return cloneSession(sess), nil
}

// UpdateModel stores the requested model id after resolution; an id the
// persona does not allow degrades per the resolver's priority list.
func (s *Store) UpdateModel(id, modelID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(id)
	if sess == nil {
		return chat.Session{}, ErrSessionNotFound
	}

	persona, _ := s.catalog.Persona(sess.PersonaID)
	sess.ModelID = compat.ResolveModel(persona, modelID, sess.ModelID)
	sess.UpdatedAt = time.Now().UTC()
	return cloneSession(sess), nil
}

// Reconcile re-validates every session after a catalog reload: a
// persona that vanished falls back to the configured default (or the
// first catalog entry), and every model id is re-resolved.
func (s *Store) Reconcile() {
	snapshot, ready := s.catalog.Snapshot()
	if !ready {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		persona, ok := snapshot.Persona(sess.PersonaID)
		if !ok {
			if fallback, found := compat.DefaultPersona(snapshot, sess.PersonaID, s.defaultPersonaID); found {
				persona = fallback
				sess.PersonaID = fallback.ID
			}
		}
		sess.ModelID = compat.ResolveModel(persona, sess.ModelID, "")
	}
}

// Active returns a copy of the active session.
func (s *Store) Active() (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, sess := s.findLocked(s.activeID)
	if sess == nil {
		return chat.Session{}, false
	}
	return cloneSession(sess), true
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, sess := s.findLocked(id)
	if sess == nil {
		return chat.Session{}, false
	}
	return cloneSession(sess), true
}

// List returns copies of all sessions, newest first.
func (s *Store) List() []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}
	return out
}

// AppendMessage appends one message to the session transcript and
// returns it together with the resulting message count.
func (s *Store) AppendMessage(sessionID, role, content, personaID string) (chat.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(sessionID)
	if sess == nil {
		return chat.Message{}, 0, ErrSessionNotFound
	}

	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		PersonaID: personaID,
		CreatedAt: time.Now().UTC(),
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = msg.CreatedAt
	return msg, len(sess.Messages), nil
}

// ReplaceTranscript adopts a gateway-supplied message list wholesale.
func (s *Store) ReplaceTranscript(sessionID string, messages []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.Messages = make([]chat.Message, len(messages))
	copy(sess.Messages, messages)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// AddUsage folds gateway-reported token counts into the session.
func (s *Store) AddUsage(sessionID string, prompt, completion int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, sess := s.findLocked(sessionID); sess != nil {
		sess.Usage.Add(prompt, completion)
	}
}

// ApplyDerivedTitle sets the title to the first message's content,
// truncated to TitleRuneLimit runes with an ellipsis. It applies only
// when the session still exists, has at least one message, and was
// never manually renamed. Only the title field is touched.
func (s *Store) ApplyDerivedTitle(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sess := s.findLocked(sessionID)
	if sess == nil || len(sess.Messages) == 0 || sess.ManuallyRenamed {
		return "", false
	}

	sess.Title = truncateTitle(sess.Messages[0].Content)
	return sess.Title, true
}

func truncateTitle(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= TitleRuneLimit {
		return string(runes)
	}
	return string(runes[:TitleRuneLimit]) + "…"
}

package store

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Field caps and admission limits. Text over a cap is truncated at write
// time, never rejected.
const (
	MaxQuestionLen = 2000
	MaxContextLen  = 5000
	MaxAgentLen    = 100
	MaxTaskLen     = 200
	MaxAnswerLen   = 10000

	MaxPending  = 100
	AnsweredTTL = 300 * time.Second
)

// Creation failure sentinels. ErrCapacity signals backpressure; the caller
// should retry later rather than treat it as a hard error.
var (
	ErrMissingQuestion = errors.New("question is required")
	ErrMissingCommand  = errors.New("command is required for permission requests")
	ErrCapacity        = errors.New("too many pending requests")
)

// Only lowercase hex ids are ever issued, and only such ids are looked up.
// Anything else (wrong length, path separators, uppercase) is rejected
// before touching the map, so an id can be used unsanitized downstream.
var validIDRe = regexp.MustCompile(`^[0-9a-f]{12}$`)

// ValidID reports whether id has the exact shape of a store-issued id.
func ValidID(id string) bool {
	return validIDRe.MatchString(id)
}

// Store is the authoritative in-memory state for all requests. Every
// operation runs under one mutex; none of them do I/O while holding it.
//
// Pending requests have no server-side expiry: an abandoned caller occupies
// a slot until a human answers. This is deliberate; the capacity cap bounds
// the damage.
type Store struct {
	mu       sync.Mutex
	requests map[string]*Request
	nextSeq  uint64
	now      func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		requests: make(map[string]*Request),
		now:      time.Now,
	}
}

// Create validates and admits a new pending request. Stale answered
// requests are evicted first, then the pending count is checked against
// MaxPending; at or over the cap Create fails with ErrCapacity.
func (s *Store) Create(input CreateInput) (Request, error) {
	if strings.TrimSpace(input.Question) == "" {
		return Request{}, ErrMissingQuestion
	}
	reqType := input.Type
	if reqType == "" {
		reqType = TypeQuestion
	}
	if reqType == TypePermission && strings.TrimSpace(input.Command) == "" {
		return Request{}, ErrMissingCommand
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(now)

	pending := 0
	for _, req := range s.requests {
		if req.Status == StatusPending {
			pending++
		}
	}
	if pending >= MaxPending {
		return Request{}, ErrCapacity
	}

	s.nextSeq++
	req := &Request{
		ID:        s.newIDLocked(),
		Question:  truncate(input.Question, MaxQuestionLen),
		Context:   truncate(input.Context, MaxContextLen),
		Agent:     truncate(input.Agent, MaxAgentLen),
		Task:      truncate(input.Task, MaxTaskLen),
		Type:      reqType,
		Command:   input.Command,
		Status:    StatusPending,
		CreatedAt: now.Unix(),
		seq:       s.nextSeq,
	}
	s.requests[req.ID] = req
	return *req, nil
}

// Get returns a copy of the request with the given id. Malformed ids are
// rejected before any lookup.
func (s *Store) Get(id string) (Request, bool) {
	if !ValidID(id) {
		return Request{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return Request{}, false
	}
	return *req, true
}

// Pending returns all pending requests ordered by creation.
func (s *Store) Pending() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Request, 0, len(s.requests))
	for _, req := range s.requests {
		if req.Status == StatusPending {
			result = append(result, *req)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].seq < result[j].seq
	})
	return result
}

// Answer records the human's answer for a pending request. It returns
// false when the id is malformed, unknown, or already answered; the first
// answer wins and is never overwritten.
func (s *Store) Answer(id, text string) bool {
	if !ValidID(id) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || req.Status != StatusPending {
		return false
	}
	req.Status = StatusAnswered
	req.Answer = truncate(text, MaxAnswerLen)
	req.AnsweredAt = s.now().Unix()
	return true
}

// HasPending reports whether at least one request is still pending.
func (s *Store) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range s.requests {
		if req.Status == StatusPending {
			return true
		}
	}
	return false
}

// evictLocked removes answered requests whose answer is older than
// AnsweredTTL. Pending requests are never evicted. Call under s.mu.
func (s *Store) evictLocked(now time.Time) {
	cutoff := now.Add(-AnsweredTTL).Unix()
	for id, req := range s.requests {
		if req.Status == StatusAnswered && req.AnsweredAt < cutoff {
			delete(s.requests, id)
		}
	}
}

// newIDLocked issues a fresh 12-hex-character id, unique within the store.
// Call under s.mu.
func (s *Store) newIDLocked() string {
	for {
		raw := uuid.New()
		id := strings.ReplaceAll(raw.String(), "-", "")[:12]
		if _, taken := s.requests[id]; !taken {
			return id
		}
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

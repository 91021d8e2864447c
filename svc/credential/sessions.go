package credential

import "slices"

// MaxSessions caps the refresh tokens kept per user.
const MaxSessions = 4

// Sessions is a fixed-capacity FIFO of refresh tokens, oldest first.
type Sessions struct {
	tokens   []string
	capacity int
}

// NewSessions copies tokens. A list longer than capacity is trimmed from
// the oldest end.
func NewSessions(tokens []string, capacity int) *Sessions {
	if capacity <= 0 {
		capacity = MaxSessions
	}
	s := &Sessions{tokens: slices.Clone(tokens), capacity: capacity}
	s.trim()
	return s
}

// Push appends tok and returns the tokens evicted to stay within capacity.
func (s *Sessions) Push(tok string) []string {
	s.tokens = append(s.tokens, tok)
	return s.trim()
}

// Remove drops every occurrence of tok.
func (s *Sessions) Remove(tok string) bool {
	n := len(s.tokens)
	s.tokens = slices.DeleteFunc(s.tokens, func(t string) bool { return t == tok })
	return len(s.tokens) != n
}

func (s *Sessions) Contains(tok string) bool { return slices.Contains(s.tokens, tok) }

func (s *Sessions) Len() int { return len(s.tokens) }

// Tokens returns a copy, oldest first.
func (s *Sessions) Tokens() []string { return slices.Clone(s.tokens) }

func (s *Sessions) trim() []string {
	over := len(s.tokens) - s.capacity
	if over <= 0 {
		return nil
	}
	evicted := slices.Clone(s.tokens[:over])
	s.tokens = slices.Clone(s.tokens[over:])
	return evicted
}

package application

import (
	"sync"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

// ClientSelector picks the GitHub client matching a repository's API host.
// It holds mutex-protected references to the public and enterprise clients so
// credential updates can take effect without restarting the process. Either
// client may be nil when the corresponding credential is not configured.
type ClientSelector struct {
	mu         sync.RWMutex
	public     driven.GitHubClient
	enterprise driven.GitHubClient
}

// NewClientSelector creates a selector with the given initial clients.
func NewClientSelector(public, enterprise driven.GitHubClient) *ClientSelector {
	return &ClientSelector{
		public:     public,
		enterprise: enterprise,
	}
}

// For returns the client for the repository's host, or nil if no credential
// is configured for it. Callers must check for nil.
func (s *ClientSelector) For(repo model.Repository) driven.GitHubClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if repo.Enterprise {
		return s.enterprise
	}
	return s.public
}

// Replace swaps both clients. The next caller of For receives the new values.
func (s *ClientSelector) Replace(public, enterprise driven.GitHubClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.public = public
	s.enterprise = enterprise
}

package search

import "github.com/poiesic/lexidict/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to trace the auto cascade and skipped records.
type SearchMonitor interface {
	Start(query Query)
	AfterTier(mode core.SearchMode, hits []Hit)
	SkippedRecord(key string, err error)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query)                       {}
func (n *noopMonitor) AfterTier(_ core.SearchMode, _ []Hit) {}
func (n *noopMonitor) SkippedRecord(_ string, _ error)     {}
func (n *noopMonitor) Finish(_ *Result)                    {}

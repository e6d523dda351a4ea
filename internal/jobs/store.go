package jobs

import (
	"log"
	"sync"
)

// Renderer draws the open-jobs view from a cache snapshot
type Renderer interface {
	RenderOpenJobs(jobs Cache)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(jobs Cache)

func (f RendererFunc) RenderOpenJobs(jobs Cache) { f(jobs) }

// Store owns the process-wide open-jobs cache. Mutations swap the cache for a
// new slice, so a snapshot handed out earlier never changes underneath its reader.
type Store struct {
	mu       sync.Mutex
	cache    Cache
	visible  bool
	pending  bool
	renderer Renderer
	// gen changes whenever the scanned work order does
	gen uint64
}

// NewStore creates an empty store. renderer may be nil.
func NewStore(renderer Renderer) *Store {
	return &Store{renderer: renderer}
}

// SetRenderer replaces the view renderer
func (s *Store) SetRenderer(r Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer = r
}

// Apply applies a speculative change and re-renders the view if it is visible
func (s *Store) Apply(intent ChangeIntent, ambient Ambient) ApplyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := Apply(s.cache, intent, ambient)
	if !result.Matched {
		// The cache can lag the spreadsheet, so a miss is not an error
		log.Printf("WARN: optimistic %s found no open job %s", intent.Kind, intent.Key)
	}
	s.cache = result.Cache
	s.renderLocked()
	return result
}

// Replace installs an authoritative job list from the spreadsheet
func (s *Store) Replace(jobs []Job) {
	next := make(Cache, len(jobs))
	copy(next, jobs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = next
	s.renderLocked()
}

// Generation identifies the work order the cache currently belongs to. Capture
// it before an authoritative fetch and hand it to ReplaceIfCurrent.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// ReplaceIfCurrent installs an authoritative job list fetched at generation gen.
// The list is dropped when the work order changed while it was in flight.
func (s *Store) ReplaceIfCurrent(gen uint64, jobs []Job) bool {
	next := make(Cache, len(jobs))
	copy(next, jobs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.cache = next
	s.renderLocked()
	return true
}

// Advance starts a new generation, so fetches already in flight for the
// previous work order are discarded
func (s *Store) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
}

// Snapshot returns the current cache. Callers must not modify it.
func (s *Store) Snapshot() Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache
}

// Find looks up a job by key
func (s *Store) Find(key JobKey) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.cache.Find(key)
	if idx == -1 {
		return Job{}, false
	}
	return s.cache[idx], true
}

// SetVisible records whether the open-jobs view is on screen. A render that was
// deferred while hidden is flushed when the view becomes visible.
func (s *Store) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
	if visible && s.pending {
		s.renderLocked()
	}
}

// Visible reports whether the open-jobs view is on screen
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Reset empties the cache, as on a full reload of the kiosk
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache = nil
	s.renderLocked()
}

// Attach is called when a new view connects. It returns the cache to draw
// right away if the view is visible. Otherwise the render is deferred until
// the view is shown.
func (s *Store) Attach() (Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		s.pending = true
		return nil, false
	}
	return s.cache, true
}

func (s *Store) renderLocked() {
	if !s.visible || s.renderer == nil {
		s.pending = true
		return
	}
	s.pending = false
	s.renderer.RenderOpenJobs(s.cache)
}

package viewer

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/render"
)

// Action is a page transition requested by a reader.
type Action string

const (
	ActionNext Action = "next"
	ActionPrev Action = "prev"
	ActionGoto Action = "goto"
)

// View is one reader's live rendering of one document. All access goes
// through mu, so transitions on a view never interleave.
type View struct {
	mu sync.Mutex

	Reader string
	Path   string

	doc       *render.Document
	pager     *paginate.Paginator
	prefs     *paginate.Prefs
	updatedAt time.Time
}

// Snapshot is a read-only, JSON-safe copy of view state.
type Snapshot struct {
	Path     string             `json:"path"`
	Title    string             `json:"title"`
	Format   string             `json:"format"`
	Paged    bool               `json:"paged"`
	Index    int                `json:"index"`
	Count    int                `json:"count"`
	Label    string             `json:"label,omitempty"`
	Sections []paginate.Section `json:"sections,omitempty"`
}

func (v *View) touch() {
	v.updatedAt = time.Now()
}

// Sync brings the view in line with the reader's persisted mode flag. When
// the flag cannot be read the view keeps its current mode.
func (v *View) Sync(ctx context.Context) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()
	on, ok := v.prefs.Paged(ctx)
	if !ok {
		return v.snapshot()
	}
	v.apply(ctx, on)
	return v.snapshot()
}

// Toggle flips the reader's mode flag and applies it to this view.
func (v *View) Toggle(ctx context.Context) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()
	on, ok := v.prefs.Paged(ctx)
	if !ok {
		on = v.pager.Paged()
	}
	v.prefs.SetPaged(ctx, !on)
	v.apply(ctx, !on)
	return v.snapshot()
}

func (v *View) apply(ctx context.Context, paged bool) {
	if paged {
		v.pager.Enable(ctx)
	} else {
		v.pager.Disable()
	}
}

// Step applies a page transition. index is only used by ActionGoto. Steps on
// an unpaged view leave it unchanged.
func (v *View) Step(ctx context.Context, action Action, index int) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()
	switch action {
	case ActionNext:
		v.pager.Next(ctx)
	case ActionPrev:
		v.pager.Prev(ctx)
	case ActionGoto:
		v.pager.Goto(ctx, index)
	}
	return v.snapshot()
}

// Snapshot returns the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

func (v *View) snapshot() Snapshot {
	st := v.pager.State()
	return Snapshot{
		Path:     v.doc.Path,
		Title:    v.doc.Title,
		Format:   v.doc.Format,
		Paged:    st.Paged,
		Index:    st.Index,
		Count:    st.Count,
		Label:    v.pager.Label(),
		Sections: v.pager.Sections(),
	}
}

// Title returns the document title.
func (v *View) Title() string {
	return v.doc.Title
}

// WriteHTML renders the article in its current state.
func (v *View) WriteHTML(w io.Writer) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return html.Render(w, v.doc.Article)
}

// ViewStore is a thread-safe in-memory view registry with TTL eviction.
type ViewStore struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
}

func NewViewStore(ttl time.Duration) *ViewStore {
	return &ViewStore{
		views: make(map[string]*View),
		ttl:   ttl,
	}
}

func viewKey(reader, docPath string) string {
	return reader + "\x00" + docPath
}

func (s *ViewStore) Put(v *View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[viewKey(v.Reader, v.Path)] = v
}

func (s *ViewStore) Get(reader, docPath string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[viewKey(reader, docPath)]
}

// GetOrPut returns the existing view for v's key, or stores and returns v.
func (s *ViewStore) GetOrPut(v *View) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := viewKey(v.Reader, v.Path)
	if existing, ok := s.views[key]; ok {
		return existing
	}
	s.views[key] = v
	return v
}

// Len returns the number of cached views.
func (s *ViewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Cleanup removes views idle for longer than the TTL.
func (s *ViewStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for key, v := range s.views {
		v.mu.Lock()
		idle := now.Sub(v.updatedAt)
		v.mu.Unlock()
		if idle > s.ttl {
			delete(s.views, key)
			removed++
		}
	}
	return removed
}

// Package viewer keeps one live, paginated rendering per reader and document
// and applies reader actions to it.
package viewer

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docpager/internal/kv"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/render"
)

// Service serves documents from a Library to readers, with per-reader
// preferences kept in a kv.Store.
type Service struct {
	lib   *Library
	views *ViewStore
	store kv.Store
	log   *slog.Logger

	cleanupInterval time.Duration

	// PrefsTimeout bounds each preference read or write. Zero disables the
	// bound.
	PrefsTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(lib *Library, store kv.Store, log *slog.Logger, viewTTL time.Duration) *Service {
	interval := 5 * time.Minute
	if viewTTL > 0 && viewTTL < interval {
		interval = viewTTL
	}
	return &Service{
		lib:             lib,
		views:           NewViewStore(viewTTL),
		store:           store,
		log:             log,
		cleanupInterval: interval,
		PrefsTimeout:    paginate.DefaultTimeout,
	}
}

// Start launches the view cache cleanup loop.
func (s *Service) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := s.views.Cleanup(); n > 0 {
					s.log.Debug("evicted idle views", "count", n)
				}
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Prefs returns the persistence adapter for reader.
func (s *Service) Prefs(reader string) *paginate.Prefs {
	return paginate.NewPrefs(kv.Scoped(s.store, "readers/"+reader+"/"), s.log.With("reader", reader)).
		WithTimeout(s.PrefsTimeout)
}

// Documents lists the library.
func (s *Service) Documents() ([]DocumentInfo, error) {
	return s.lib.List()
}

// Open returns the reader's view of docPath, rendering it on first use, and
// syncs it with the reader's mode flag.
func (s *Service) Open(ctx context.Context, reader, docPath string) (*View, error) {
	clean := CleanPath(docPath)
	v := s.views.Get(reader, clean)
	if v == nil {
		doc, err := s.lib.Load(clean)
		if err != nil {
			return nil, err
		}
		v = s.newView(reader, doc)
		v = s.views.GetOrPut(v)
	}
	v.Sync(ctx)
	return v, nil
}

func (s *Service) newView(reader string, doc *render.Document) *View {
	prefs := s.Prefs(reader)
	root := paginate.ContentRoot(doc.Article, render.HeaderClass)
	pager := paginate.New(root, IndexKey(doc.Path), prefs, paginate.Options{
		Log:        s.log.With("reader", reader),
		PrevAction: ActionURL(ActionPrev, doc.Path),
		NextAction: ActionURL(ActionNext, doc.Path),
	})
	s.log.Debug("view created", "reader", reader, "path", doc.Path, "format", doc.Format)
	return &View{
		Reader:    reader,
		Path:      doc.Path,
		doc:       doc,
		pager:     pager,
		prefs:     prefs,
		updatedAt: time.Now(),
	}
}

// Toggle flips the reader's paged mode and applies it to docPath.
func (s *Service) Toggle(ctx context.Context, reader, docPath string) (Snapshot, error) {
	v, err := s.Open(ctx, reader, docPath)
	if err != nil {
		return Snapshot{}, err
	}
	return v.Toggle(ctx), nil
}

// Step applies a page transition to the reader's view of docPath.
func (s *Service) Step(ctx context.Context, reader, docPath string, action Action, index int) (Snapshot, error) {
	v, err := s.Open(ctx, reader, docPath)
	if err != nil {
		return Snapshot{}, err
	}
	return v.Step(ctx, action, index), nil
}

// IndexKey is the document key used for the persisted page index.
func IndexKey(docPath string) string {
	return "/docs/" + docPath
}

// DocURL is the reading URL of a document.
func DocURL(docPath string) string {
	return "/docs/" + escapePath(docPath)
}

// ActionURL is the form target for a page action on a document.
func ActionURL(action Action, docPath string) string {
	return "/page/" + string(action) + "/" + escapePath(docPath)
}

// ToggleURL is the form target for the paged-mode toggle.
func ToggleURL(docPath string) string {
	return "/mode/toggle/" + escapePath(docPath)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

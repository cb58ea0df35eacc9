package viewer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docpager/internal/kv"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/render"
)

const guide = `# Guide

Welcome.

## Install

Run the installer.

## Configure

Edit the file.

## Run

Start it.
`

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestService(t *testing.T, store kv.Store, files map[string]string) *Service {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	lib, err := NewLibrary(writeDocs(t, files), 1<<20, render.Config{}, log)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return NewService(lib, store, log, time.Hour)
}

func TestService_ToggleAndStep(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, kv.NewMemory(), map[string]string{"guide.md": guide})

	v, err := svc.Open(ctx, "r1", "guide.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if snap := v.Snapshot(); snap.Paged {
		t.Fatal("new reader should start in continuous mode")
	}

	snap, err := svc.Toggle(ctx, "r1", "guide.md")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !snap.Paged || snap.Count != 3 || snap.Index != 0 {
		t.Fatalf("after toggle: %+v", snap)
	}
	if snap.Title != "Guide" {
		t.Errorf("title = %q", snap.Title)
	}
	if len(snap.Sections) != 3 || snap.Sections[1].Title != "Configure" {
		t.Errorf("sections = %+v", snap.Sections)
	}

	snap, _ = svc.Step(ctx, "r1", "guide.md", ActionPrev, 0)
	if snap.Index != 2 || snap.Label != "Page 3 of 3" {
		t.Errorf("prev from first page: %+v", snap)
	}
	snap, _ = svc.Step(ctx, "r1", "guide.md", ActionGoto, 1)
	if snap.Index != 1 {
		t.Errorf("goto 1: %+v", snap)
	}

	var buf bytes.Buffer
	if err := v.WriteHTML(&buf); err != nil {
		t.Fatalf("write html: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `data-page-index="1"`) || !strings.Contains(out, "Page 2 of 3") {
		t.Errorf("rendered view out of sync with state:\n%s", out)
	}
	if !strings.Contains(out, `action="/page/next/guide.md"`) {
		t.Errorf("pager forms missing:\n%s", out)
	}

	snap, _ = svc.Toggle(ctx, "r1", "guide.md")
	if snap.Paged {
		t.Error("second toggle should return to continuous mode")
	}
}

func TestService_ModeAndIndexPersistAcrossViews(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	files := map[string]string{"guide.md": guide}

	svc := newTestService(t, store, files)
	svc.Toggle(ctx, "r1", "guide.md")
	svc.Step(ctx, "r1", "guide.md", ActionNext, 0)
	svc.Step(ctx, "r1", "guide.md", ActionNext, 0)

	// A new service over the same store stands in for a later session.
	later := newTestService(t, store, files)
	v, err := later.Open(ctx, "r1", "guide.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if snap := v.Snapshot(); !snap.Paged || snap.Index != 2 {
		t.Errorf("restored session: %+v", snap)
	}

	other, _ := later.Open(ctx, "r2", "guide.md")
	if snap := other.Snapshot(); snap.Paged {
		t.Error("another reader should not inherit r1's mode")
	}
}

func TestService_ModeIsGlobalPerReader(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, kv.NewMemory(), map[string]string{
		"a.md": guide,
		"b.md": "## One\n\n## Two\n",
	})
	svc.Toggle(ctx, "r1", "a.md")

	v, err := svc.Open(ctx, "r1", "b.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if snap := v.Snapshot(); !snap.Paged || snap.Count != 2 {
		t.Errorf("b.md should open paged: %+v", snap)
	}

	a := svc.views.Get("r1", "a.md")
	svc.Toggle(ctx, "r1", "b.md")
	if snap := a.Snapshot(); !snap.Paged {
		t.Error("cached view changes only when reopened")
	}
	a, _ = svc.Open(ctx, "r1", "a.md")
	if snap := a.Snapshot(); snap.Paged {
		t.Error("reopened view should follow the mode flag")
	}
}

// failingStore is a kv.Store whose every call fails.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("quota exceeded") }
func (failingStore) Close() error                              { return nil }

func TestService_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, failingStore{}, map[string]string{"guide.md": guide})

	snap, err := svc.Toggle(ctx, "r1", "guide.md")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !snap.Paged || snap.Count != 3 || snap.Index != 0 {
		t.Fatalf("toggle should still page the view: %+v", snap)
	}

	// Every later request reopens the view; an unreadable mode flag must not
	// switch paging back off.
	snap, err = svc.Step(ctx, "r1", "guide.md", ActionNext, 0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !snap.Paged || snap.Index != 1 || snap.Label != "Page 2 of 3" {
		t.Errorf("next without storage: %+v", snap)
	}
	v, err := svc.Open(ctx, "r1", "guide.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if snap := v.Snapshot(); !snap.Paged || snap.Index != 1 {
		t.Errorf("reopen without storage: %+v", snap)
	}

	snap, _ = svc.Toggle(ctx, "r1", "guide.md")
	if snap.Paged {
		t.Errorf("second toggle should flip the view's own mode: %+v", snap)
	}
	snap, _ = svc.Step(ctx, "r1", "guide.md", ActionNext, 0)
	if snap.Paged || snap.Count != 0 {
		t.Errorf("step on continuous view: %+v", snap)
	}
}

func TestService_SlowStoreDoesNotBlockPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		http.Error(w, "too slow", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := kv.NewPathstore(srv.URL, "secret")
	defer store.Close()
	svc := newTestService(t, store, map[string]string{"guide.md": guide})
	svc.PrefsTimeout = 50 * time.Millisecond

	ctx := context.Background()
	start := time.Now()
	snap, err := svc.Toggle(ctx, "r1", "guide.md")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	snap, err = svc.Step(ctx, "r1", "guide.md", ActionNext, 0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("toggle and step took %s against a stalled store", elapsed)
	}
	if !snap.Paged || snap.Index != 1 {
		t.Errorf("paging with a stalled store: %+v", snap)
	}
}

func TestService_OpenErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, kv.NewMemory(), map[string]string{
		"guide.md":  guide,
		"tool.exe":  "x",
		"sub/a.txt": "hello",
	})

	tests := []struct {
		path string
		want error
	}{
		{"missing.md", ErrNotFound},
		{"", ErrNotFound},
		{"tool.exe", ErrUnsupported},
		{"sub", ErrUnsupported},
		{"../guide.md", nil},
	}
	for _, tt := range tests {
		_, err := svc.Open(ctx, "r1", tt.path)
		if tt.want == nil {
			if err != nil {
				t.Errorf("%q: unexpected error %v", tt.path, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%q: err = %v, want %v", tt.path, err, tt.want)
		}
	}
}

func TestLibrary_TooLarge(t *testing.T) {
	dir := writeDocs(t, map[string]string{"big.txt": strings.Repeat("x", 100)})
	lib, err := NewLibrary(dir, 10, render.Config{}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	defer lib.Close()
	if _, err := lib.Load("big.txt"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestLibrary_List(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"b.md":          "x",
		"a/intro.txt":   "x",
		"a/skip.bin":    "x",
		".hidden/x.md":  "x",
		"c/report.html": "<p>x</p>",
	})
	lib, err := NewLibrary(dir, 0, render.Config{}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	defer lib.Close()

	docs, err := lib.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, d := range docs {
		got = append(got, d.Path)
	}
	if strings.Join(got, ",") != "a/intro.txt,b.md,c/report.html" {
		t.Errorf("list = %v", got)
	}
}

func TestViewStore_Cleanup(t *testing.T) {
	s := NewViewStore(time.Minute)
	fresh := &View{Reader: "r", Path: "a.md", updatedAt: time.Now()}
	stale := &View{Reader: "r", Path: "b.md", updatedAt: time.Now().Add(-time.Hour)}
	s.Put(fresh)
	s.Put(stale)

	if n := s.Cleanup(); n != 1 {
		t.Errorf("Cleanup removed %d, want 1", n)
	}
	if s.Get("r", "a.md") == nil || s.Get("r", "b.md") != nil {
		t.Error("wrong view evicted")
	}
	if got := s.GetOrPut(&View{Reader: "r", Path: "a.md"}); got != fresh {
		t.Error("GetOrPut should keep the existing view")
	}
}

func TestURLs(t *testing.T) {
	if got := ActionURL(ActionNext, "guides/my doc.md"); got != "/page/next/guides/my%20doc.md" {
		t.Errorf("ActionURL = %q", got)
	}
	if got := DocURL("a/b.md"); got != "/docs/a/b.md" {
		t.Errorf("DocURL = %q", got)
	}
	if got := ToggleURL("a.md"); got != "/mode/toggle/a.md" {
		t.Errorf("ToggleURL = %q", got)
	}
	if got := CleanPath("/a/../../b.md"); got != "b.md" {
		t.Errorf("CleanPath = %q", got)
	}
	if got := IndexKey("a.md"); got != "/docs/a.md" {
		t.Errorf("IndexKey = %q", got)
	}
}

func TestPrefsKeysAreReaderScoped(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	svc := newTestService(t, store, map[string]string{"guide.md": guide})
	svc.Toggle(ctx, "r1", "guide.md")

	if v, ok, _ := store.Get(ctx, "readers/r1/"+paginate.ModeKey); !ok || v != "on" {
		t.Errorf("mode key = %q, %v", v, ok)
	}
	if v, ok, _ := store.Get(ctx, "readers/r1/"+paginate.IndexKeyPrefix+"/docs/guide.md"); !ok || v != "0" {
		t.Errorf("index key = %q, %v", v, ok)
	}
}

func TestLibrary_RejectsMislabeledBinary(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"report.pdf": "just some text, not a pdf",
		"memo.docx":  "<html>not a docx</html>",
	})
	lib, err := NewLibrary(dir, 0, render.Config{}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	defer lib.Close()

	for _, name := range []string{"report.pdf", "memo.docx"} {
		if _, err := lib.Load(name); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", name, err)
		}
	}
}

func TestLibrary_ListNaturalOrder(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"ch10.md": "x",
		"ch2.md":  "x",
		"ch1.md":  "x",
	})
	lib, err := NewLibrary(dir, 0, render.Config{}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	defer lib.Close()

	docs, err := lib.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, d := range docs {
		got = append(got, d.Path)
	}
	if strings.Join(got, ",") != "ch1.md,ch2.md,ch10.md" {
		t.Errorf("list = %v", got)
	}
}

package viewer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"

	"github.com/dgallion1/docpager/internal/render"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrUnsupported = errors.New("unsupported document type")
	ErrTooLarge    = errors.New("document too large")
)

// sniffed maps binary extensions to the content kinds accepted for them.
// A .docx is a zip container, and short ones may only match as zip.
var sniffed = map[string][]string{
	".pdf":  {"pdf"},
	".docx": {"docx", "zip"},
}

// sniffLen covers the office-container matchers, which look past the first
// zip entry.
const sniffLen = 8192

// DocumentInfo describes one servable document.
type DocumentInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Library renders documents from a directory tree. Paths are slash-separated
// and relative to the directory; they cannot escape it.
type Library struct {
	root      *os.Root
	maxBytes  int64
	renderCfg render.Config
	log       *slog.Logger
}

func NewLibrary(dir string, maxBytes int64, renderCfg render.Config, log *slog.Logger) (*Library, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open docs dir: %w", err)
	}
	return &Library{
		root:      root,
		maxBytes:  maxBytes,
		renderCfg: renderCfg,
		log:       log,
	}, nil
}

// CleanPath normalizes a request path into a library path, or "" if it
// names nothing.
func CleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Load reads and renders the document at docPath.
func (l *Library) Load(docPath string) (*render.Document, error) {
	clean := CleanPath(docPath)
	if clean == "" {
		return nil, ErrNotFound
	}
	if !render.IsSupportedExtension(clean) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path.Ext(clean))
	}

	f, err := l.root.Open(clean)
	if err != nil {
		l.log.Debug("document open failed", "path", clean, "error", err)
		return nil, ErrNotFound
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return nil, ErrNotFound
	}
	if l.maxBytes > 0 && st.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, st.Size(), l.maxBytes)
	}

	if kinds, ok := sniffed[strings.ToLower(path.Ext(clean))]; ok {
		if err := checkKind(f, kinds); err != nil {
			return nil, err
		}
	}

	r, err := render.ForFile(clean, l.renderCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	var src io.Reader = f
	if l.maxBytes > 0 {
		src = io.LimitReader(f, l.maxBytes)
	}
	doc, err := r.Render(src, path.Base(clean))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", clean, err)
	}
	doc.Path = clean
	return doc, nil
}

// List returns every supported document in natural path order, so
// "ch2.md" sorts before "ch10.md".
func (l *Library) List() ([]DocumentInfo, error) {
	var docs []DocumentInfo
	err := fs.WalkDir(l.root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !render.IsSupportedExtension(p) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		docs = append(docs, DocumentInfo{Path: p, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return natural.Less(docs[i].Path, docs[j].Path) })
	return docs, nil
}

// checkKind sniffs the head of f and rewinds it. The content must match one
// of kinds.
func checkKind(f *os.File, kinds []string) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	head = head[:n]
	for _, k := range kinds {
		if filetype.Is(head, k) {
			return nil
		}
	}
	kind, _ := filetype.Match(head)
	return fmt.Errorf("%w: content is %s, expected %s", ErrUnsupported, kindName(kind.Extension), kinds[0])
}

func kindName(ext string) string {
	if ext == "" {
		return "unknown"
	}
	return ext
}

func (l *Library) Close() error {
	return l.root.Close()
}

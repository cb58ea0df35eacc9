package paginate

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Persisted key layout. Values are plain strings.
const (
	ModeKey        = "docpager:page_mode"
	IndexKeyPrefix = "docpager:page_index:"
)

// DefaultTimeout bounds each storage call. A slow store costs a page turn at
// most this long per call and is then treated as unavailable.
const DefaultTimeout = 300 * time.Millisecond

// KV is the key/value surface the paginator needs from a reader's store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Prefs reads and writes the paged-mode flag and per-document page indexes.
// Every call is best-effort: storage errors are logged at debug level and
// treated as an absent value or a no-op.
type Prefs struct {
	kv      KV
	log     *slog.Logger
	timeout time.Duration
}

// NewPrefs wraps kv. A nil kv yields a Prefs that never persists anything.
func NewPrefs(kv KV, log *slog.Logger) *Prefs {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Prefs{kv: kv, log: log, timeout: DefaultTimeout}
}

// WithTimeout sets the per-call storage deadline. Zero or less disables it.
func (p *Prefs) WithTimeout(d time.Duration) *Prefs {
	p.timeout = d
	return p
}

func (p *Prefs) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// get returns the value at key, whether it was present, and whether the read
// succeeded at all.
func (p *Prefs) get(ctx context.Context, key string) (v string, found, ok bool) {
	if p == nil || p.kv == nil {
		return "", false, false
	}
	ctx, cancel := p.callContext(ctx)
	defer cancel()
	v, found, err := p.kv.Get(ctx, key)
	if err != nil {
		p.log.Debug("prefs read failed", "key", key, "error", err)
		return "", false, false
	}
	return v, found, true
}

func (p *Prefs) set(ctx context.Context, key, value string) {
	if p == nil || p.kv == nil {
		return
	}
	ctx, cancel := p.callContext(ctx)
	defer cancel()
	if err := p.kv.Set(ctx, key, value); err != nil {
		p.log.Debug("prefs write failed", "key", key, "error", err)
	}
}

// Paged reports whether the reader last left paged mode on. ok is false when
// the flag could not be read; an absent flag reads as off with ok true.
func (p *Prefs) Paged(ctx context.Context) (on, ok bool) {
	v, _, ok := p.get(ctx, ModeKey)
	return v == "on", ok
}

// SetPaged records the paged-mode flag.
func (p *Prefs) SetPaged(ctx context.Context, on bool) {
	v := "off"
	if on {
		v = "on"
	}
	p.set(ctx, ModeKey, v)
}

// LoadIndex returns the stored page index for docPath, or 0 when it is
// absent, unreadable or not a number. The caller clamps it.
func (p *Prefs) LoadIndex(ctx context.Context, docPath string) int {
	raw, found, _ := p.get(ctx, IndexKeyPrefix+docPath)
	if !found {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// SaveIndex stores the page index for docPath.
func (p *Prefs) SaveIndex(ctx context.Context, docPath string, idx int) {
	p.set(ctx, IndexKeyPrefix+docPath, strconv.Itoa(idx))
}

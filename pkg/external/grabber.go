package external

import "context"

// Candidate is a raw (host, port) pair returned by a Grabber, with no
// schema beyond the pair (spec §6).
type Candidate struct {
	Host string
	Port int
}

// Grabber is a lazy, restartable iterator of candidates. It may be
// infinite; Next returns (Candidate{}, false, nil) only when the
// underlying source is exhausted, and an error when the source itself
// fails.
type Grabber interface {
	// Next returns the next candidate, blocking as needed. ok is false only
	// on clean exhaustion.
	Next(ctx context.Context) (candidate Candidate, ok bool, err error)
	// Reset restarts iteration from the beginning of the source.
	Reset(ctx context.Context) error
}

// FileGrabber is a minimal Grabber reading "host:port" pairs one per line
// from an in-memory list, used by the `grab` CLI subcommand and by tests. It is not restartable across processes; Reset rewinds its cursor.
type FileGrabber struct {
	lines  []Candidate
	cursor int
}

// NewFileGrabber builds a Grabber over an already-parsed candidate list.
func NewFileGrabber(candidates []Candidate) *FileGrabber {
	return &FileGrabber{lines: candidates}
}

func (g *FileGrabber) Next(ctx context.Context) (Candidate, bool, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, false, err
	}
	if g.cursor >= len(g.lines) {
		return Candidate{}, false, nil
	}
	c := g.lines[g.cursor]
	g.cursor++
	return c, true, nil
}

func (g *FileGrabber) Reset(ctx context.Context) error {
	g.cursor = 0
	return ctx.Err()
}

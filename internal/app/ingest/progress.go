package ingest

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress observes fetch progress across a batch
type Progress interface {
	Start(total int)
	Advance(ref string, ok bool)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)            {}
func (nopProgress) Advance(string, bool) {}
func (nopProgress) Finish()              {}

// BarProgress renders fetch progress as a terminal bar
type BarProgress struct {
	out       io.Writer
	container *mpb.Progress
	bar       *mpb.Bar
	last      time.Time
	mu        sync.Mutex
}

// NewBarProgress writes to w, or stderr when w is nil
func NewBarProgress(w io.Writer) *BarProgress {
	if w == nil {
		w = os.Stderr
	}
	return &BarProgress{out: w}
}

func (p *BarProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.container = mpb.New(
		mpb.WithOutput(p.out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	description := "Fetching transcripts"
	p.bar = p.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " ✓ "),
		),
	)
	p.last = time.Now()
}

func (p *BarProgress) Advance(string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		now := time.Now()
		p.bar.EwmaIncrement(now.Sub(p.last))
		p.last = now
	}
}

func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	p.bar.SetTotal(p.bar.Current(), true)
	p.container.Wait()
	p.bar, p.container = nil, nil
}

// IsTTY reports whether w is an interactive terminal
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

package progress

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
)

// Tracker produces one Bar per asset transfer
type Tracker interface {
	Start(name string, size int64) Bar
}

// Bar reports the progress of a single transfer. Proxy wraps the content
// reader so every read advances the bar.
type Bar interface {
	Proxy(r io.Reader) io.Reader
	Finish()
}

// Auto returns a terminal progress tracker when stdout is a TTY, and the
// nop tracker otherwise (CI runs see progress only through logs).
func Auto() Tracker {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return New(os.Stdout)
	}
	return Nop()
}

// New returns a tracker rendering byte-level progress bars to out
func New(out io.Writer) Tracker {
	return &barTracker{out: out}
}

// Nop returns a tracker that renders nothing
func Nop() Tracker {
	return nopTracker{}
}

type barTracker struct {
	out io.Writer
}

func (x *barTracker) Start(name string, size int64) Bar {
	bar := pb.New64(size)
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", name+" ")
	bar.SetWriter(x.out)
	bar.Start()
	return &pbBar{bar: bar}
}

type pbBar struct {
	bar *pb.ProgressBar
}

func (x *pbBar) Proxy(r io.Reader) io.Reader {
	return x.bar.NewProxyReader(r)
}

func (x *pbBar) Finish() {
	x.bar.Finish()
}

type nopTracker struct{}

func (nopTracker) Start(string, int64) Bar {
	return nopBar{}
}

type nopBar struct{}

func (nopBar) Proxy(r io.Reader) io.Reader { return r }
func (nopBar) Finish()                     {}

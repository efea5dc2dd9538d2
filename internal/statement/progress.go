package statement

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Progress tracks a multi-file parse
type Progress interface {
	// Describe names the file currently being parsed
	Describe(name string)
	// Add marks n files as finished
	Add(n int) error
	// Close removes the progress display
	Close()
}

// NoopProgress discards all progress updates
type NoopProgress struct{}

func (p *NoopProgress) Describe(string) {}
func (p *NoopProgress) Add(int) error   { return nil }
func (p *NoopProgress) Close()          {}

// NewNoopProgress creates a progress tracker that does nothing
func NewNoopProgress() *NoopProgress {
	return &NoopProgress{}
}

// BarProgress renders a terminal progress bar on stderr, one tick per
// statement file, labelled with the file being parsed
type BarProgress struct {
	bar *progressbar.ProgressBar
}

// NewBarProgress creates a progress bar sized to the number of files
func NewBarProgress(total int) *BarProgress {
	return &BarProgress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Parsing statements"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}

func (p *BarProgress) Describe(name string) {
	p.bar.Describe("Parsing " + name)
}

func (p *BarProgress) Add(n int) error {
	return p.bar.Add(n)
}

func (p *BarProgress) Close() {
	// clear the bar's line so the next log write starts clean
	fmt.Fprint(os.Stderr, "\r\033[K")
}

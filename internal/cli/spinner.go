package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a single status line while a layout or render runs. It
// stops on Stop or when its context ends, and always clears its line.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

// startSpinner shows message on stderr until stopped or ctx is done.
func startSpinner(ctx context.Context, message string) *Spinner {
	return startSpinnerOn(ctx, os.Stderr, message)
}

func startSpinnerOn(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &Spinner{
		w:       w,
		message: message,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// run is the only writer to s.w.
func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		frame := spinnerFrames[i%len(spinnerFrames)]
		fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
		select {
		case <-s.ctx.Done():
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", lipgloss.Width(s.message)+2))
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the animation and waits for the line to be cleared. Calling it
// again, or after the context ended, returns immediately.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.stopped
}

// Fail stops the spinner and reports message as an error line.
func (s *Spinner) Fail(message string) {
	s.Stop()
	printError("%s", message)
}

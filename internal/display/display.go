package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/samvad-hq/departure-board/internal/domain"
	"github.com/samvad-hq/departure-board/pkg/apiclient"
)

// Renderer prints board lines and request errors as plain text.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Lines writes one "Label: value" row per line followed by a blank separator.
func (r *Renderer) Lines(lines []domain.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lines {
		if _, err := fmt.Fprintf(r.out, "%s: %s\n", l.Label, l.Value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.out)
	return err
}

// Error writes the failure, plus the HTTP status when the server answered.
func (r *Renderer) Error(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, werr := fmt.Fprintf(r.out, "Error: %v\n", err); werr != nil {
		return werr
	}
	if reqErr, ok := apiclient.AsRequestError(err); ok && reqErr.HasStatus() {
		if _, werr := fmt.Fprintf(r.out, "Status Code: %d\n", reqErr.StatusCode); werr != nil {
			return werr
		}
	}
	return nil
}

// JSON pretty-prints a whole payload.
func (r *Renderer) JSON(v apiclient.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.out, apiclient.FormatJSON(v, 2))
	return err
}

package display

import (
	"bytes"
	"errors"
	"testing"

	"github.com/samvad-hq/departure-board/internal/domain"
	"github.com/samvad-hq/departure-board/pkg/apiclient"
)

func TestRendererLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	if err := r.Lines([]domain.Line{{Label: "Linje", Value: "17"}, {Label: "Mot", Value: "Farsta"}}); err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if got := buf.String(); got != "Linje: 17\nMot: Farsta\n\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRendererErrorWithStatus(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	err := &apiclient.RequestError{Message: "HTTP 404: Not Found", StatusCode: 404}
	if werr := r.Error(err); werr != nil {
		t.Fatalf("Error: %v", werr)
	}
	if got := buf.String(); got != "Error: HTTP 404: Not Found\nStatus Code: 404\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRendererErrorWithoutStatus(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	if err := r.Error(&apiclient.RequestError{Message: "request failed: dial tcp", Err: errors.New("dial tcp")}); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if got := buf.String(); got != "Error: request failed: dial tcp\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRendererJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf).JSON(apiclient.Object(map[string]apiclient.Value{"a": apiclient.Int(1)})); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got := buf.String(); got != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

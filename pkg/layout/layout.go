// Package layout describes which response fields the board displays.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/samvad-hq/departure-board/internal/domain"
	"github.com/samvad-hq/departure-board/pkg/apiclient"
	"gopkg.in/yaml.v3"
)

// DefaultPlaceholder is shown when a field is missing and no default is configured.
const DefaultPlaceholder = "N/A"

// Field maps a dot path in the API response to a board label.
type Field struct {
	Label   string `json:"label" yaml:"label" toml:"label"`
	Path    string `json:"path" yaml:"path" toml:"path"`
	Default string `json:"default" yaml:"default" toml:"default"`
}

// Layout is an ordered list of fields. It is immutable once loaded.
type Layout struct {
	fields []Field
}

type layoutFile struct {
	Fields []Field `json:"fields" yaml:"fields" toml:"fields"`
}

// Default returns the classic departure board: line, direction, time to departure.
func Default() *Layout {
	return &Layout{fields: []Field{
		{Label: "Linje", Path: "departure.route.designation", Default: DefaultPlaceholder},
		{Label: "Mot", Path: "departure.route.direction", Default: DefaultPlaceholder},
		{Label: "Om", Path: "departure.nextDepartureIn", Default: DefaultPlaceholder},
	}}
}

// New validates fields and builds a layout.
func New(fields []Field) (*Layout, error) {
	if len(fields) == 0 {
		return nil, errors.New("layout contains no fields")
	}
	out := make([]Field, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		f = sanitizeField(f)
		if f.Path == "" {
			return nil, fmt.Errorf("fields[%d]: path is required", i)
		}
		if _, dup := seen[f.Label]; dup {
			return nil, fmt.Errorf("duplicate field label %q", f.Label)
		}
		seen[f.Label] = struct{}{}
		out[i] = f
	}
	return &Layout{fields: out}, nil
}

func sanitizeField(f Field) Field {
	f.Path = strings.TrimSpace(f.Path)
	f.Label = strings.TrimSpace(f.Label)
	if f.Label == "" {
		f.Label = f.Path
	}
	if f.Default == "" {
		f.Default = DefaultPlaceholder
	}
	return f
}

// Load reads a layout from a YAML, JSON or TOML file. An empty path yields Default.
func Load(path string) (*Layout, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes layout content; ext selects the decoder, empty tries each in turn.
func Parse(data []byte, ext string) (*Layout, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
		{name: "toml", ext: ".toml", fn: toml.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file layoutFile
		if err := d.fn(data, &file); err != nil {
			lastErr = fmt.Errorf("decode %s layout: %w", d.name, err)
			continue
		}
		return New(file.Fields)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("layout file format not recognized (expected YAML, JSON or TOML)")
}

// Fields returns a copy of the configured fields.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Extract resolves every field against the response, in layout order.
func (l *Layout) Extract(resp *apiclient.Response) []domain.Line {
	lines := make([]domain.Line, 0, len(l.fields))
	for _, f := range l.fields {
		lines = append(lines, domain.Line{
			Label: f.Label,
			Path:  f.Path,
			Value: resp.FieldText(f.Path, f.Default),
		})
	}
	return lines
}

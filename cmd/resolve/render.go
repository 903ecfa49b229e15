package resolve

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/krau/sankaku-dl/core"
	"github.com/krau/sankaku-dl/parsers/sankaku"
	"github.com/krau/sankaku-dl/pkg/download"
	"github.com/krau/sankaku-dl/pkg/sink"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat validates s. An empty s picks text for terminals and json otherwise.
func ParseFormat(s string, tty bool) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	case "":
		if tty {
			return FormatText, nil
		}
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q, expected json, yaml or text", s)
}

// Entry is the serialized form of one batch result.
type Entry struct {
	Source string `json:"source" yaml:"source"`
	Result any    `json:"result" yaml:"result"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	Cached bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
}

func Entries(shape sink.Shape, results []core.Result) ([]Entry, error) {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		e := Entry{Source: r.URL, Cached: r.Cached}
		if r.Err != nil {
			e.Error = r.Err.Error()
		} else {
			v, err := sink.Encode(shape, r.Download)
			if err != nil {
				return nil, err
			}
			e.Result = v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func Render(w io.Writer, format Format, shape sink.Shape, results []core.Result) error {
	if format == FormatText {
		return renderText(w, results)
	}
	entries, err := Entries(shape, results)
	if err != nil {
		return err
	}
	switch format {
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(entries)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	}
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

const maxTextTags = 12

func renderText(w io.Writer, results []core.Result) error {
	var sb strings.Builder
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(&sb, "%s %s\n  %s\n", failStyle.Render("✗"), r.URL, r.Err)
		case r.Download == nil:
			fmt.Fprintf(&sb, "%s %s\n", emptyStyle.Render("-"), emptyStyle.Render(r.URL+" (nothing to download)"))
		default:
			fmt.Fprintf(&sb, "%s %s", okStyle.Render("✓"), r.URL)
			if r.Cached {
				sb.WriteString(emptyStyle.Render(" (cached)"))
			}
			sb.WriteString("\n")
			writeDownload(&sb, r.Download)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeDownload(sb *strings.Builder, dl *download.Download) {
	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(sb, "  %s %s\n", keyStyle.Render(k+":"), v)
		}
	}
	file := dl.Filename
	if size, ok := dl.Metadata["file_size"].(int64); ok && size > 0 {
		file += " (" + humanize.Bytes(uint64(size)) + ")"
	}
	field("file", file)
	field("url", dl.URL)
	if author, ok := dl.Metadata["author"].(string); ok {
		field("author", author)
	}
	if w, ok := dl.Metadata["width"].(int64); ok {
		if h, ok := dl.Metadata["height"].(int64); ok {
			field("size", fmt.Sprintf("%dx%d", w, h))
		}
	}
	if ts, ok := sankaku.CreatedTime(dl.Metadata["created_at"]); ok {
		field("posted", humanize.Time(ts))
	}
	if tags, ok := dl.Metadata["tags"].([]string); ok && len(tags) > 0 {
		shown := tags
		if len(shown) > maxTextTags {
			shown = shown[:maxTextTags]
		}
		line := strings.Join(shown, ", ")
		if extra := len(tags) - len(shown); extra > 0 {
			line += fmt.Sprintf(" +%d more", extra)
		}
		field("tags", line)
	}
}

package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/krau/sankaku-dl/core"
	"github.com/krau/sankaku-dl/pkg/download"
	"github.com/krau/sankaku-dl/pkg/sink"
)

func sampleResults() []core.Result {
	return []core.Result{
		{
			URL: "https://sankaku.app/posts/abc",
			Download: &download.Download{
				URL:       "https://s.example/a.png",
				Filename:  "abc.png",
				Extension: "png",
				ID:        "abc",
				Category:  "sankaku",
				Source:    "https://sankaku.app/posts/abc",
				Headers:   map[string]string{"Referer": "https://sankaku.app/"},
				Metadata: map[string]any{
					"width":     int64(800),
					"height":    int64(600),
					"tags":      []string{"one", "two"},
					"author":    "someone",
					"file_size": int64(2048),
				},
			},
		},
		{URL: "https://sankaku.app/posts/gone"},
		{URL: "https://idolcomplex.com/posts/bad", Err: errors.New("boom")},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		tty  bool
		want Format
		err  bool
	}{
		{in: "", tty: true, want: FormatText},
		{in: "", tty: false, want: FormatJSON},
		{in: "YAML", want: FormatYAML},
		{in: " json ", tty: true, want: FormatJSON},
		{in: "xml", err: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in, tt.tty)
		if tt.err {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q, %v) = %q, %v; want %q", tt.in, tt.tty, got, err, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, sink.ShapeCombined, sampleResults()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, buf.String())
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	rec, ok := got[0]["result"].(map[string]any)
	if !ok || rec["filename"] != "abc.png" || rec["url"] != "https://s.example/a.png" {
		t.Fatalf("unexpected combined record: %#v", got[0]["result"])
	}
	if got[1]["result"] != nil || got[1]["error"] != nil {
		t.Fatalf("empty result should have no result and no error: %#v", got[1])
	}
	if got[2]["error"] != "boom" {
		t.Fatalf("unexpected error entry: %#v", got[2])
	}
}

func TestRenderYAMLMessages(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatYAML, sink.ShapeMessages, sampleResults()[:1]); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var got []struct {
		Source string `yaml:"source"`
		Result []struct {
			Type string `yaml:"type"`
			URL  string `yaml:"url"`
		} `yaml:"result"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml output: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || len(got[0].Result) != 2 {
		t.Fatalf("unexpected yaml output: %s", buf.String())
	}
	if got[0].Result[0].Type != "directory" || got[0].Result[1].URL != "https://s.example/a.png" {
		t.Fatalf("unexpected messages: %+v", got[0].Result)
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatText, sink.ShapeItem, sampleResults()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"abc.png (2.0 kB)", "800x600", "one, two", "someone", "nothing to download", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestReadInput(t *testing.T) {
	content := "https://sankaku.app/posts/a\n\n# comment\n  https://idolcomplex.com/posts/b  \n"
	fromStdin, err := readInput("-", strings.NewReader(content))
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}
	want := []string{"https://sankaku.app/posts/a", "https://idolcomplex.com/posts/b"}
	if strings.Join(fromStdin, " ") != strings.Join(want, " ") {
		t.Fatalf("got %v, want %v", fromStdin, want)
	}

	fp := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(fp, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := readInput(fp, nil)
	if err != nil || len(fromFile) != 2 {
		t.Fatalf("readInput(file) = %v, %v", fromFile, err)
	}
	if _, err := readInput(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

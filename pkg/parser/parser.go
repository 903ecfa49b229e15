package parser

import (
	"context"

	"github.com/blang/semver"
)

type Parser interface {
	CanHandle(url string) bool
	Parse(ctx context.Context, url string) (*Item, error)
}

// ConfigurableParser receives its section of the parser config once, before first use.
// cfg is nil when the section is absent.
type ConfigurableParser interface {
	Parser
	Name() string
	Configure(cfg map[string]any) error
}

type Meta struct {
	Name        string         `json:"name" yaml:"name"`
	Version     semver.Version `json:"version" yaml:"version"`
	Description string         `json:"description" yaml:"description"`
	Hosts       []string       `json:"hosts" yaml:"hosts"`
}

type DescribedParser interface {
	Meta() Meta
}

// Resource is a single downloadable resource with metadata.
type Resource struct {
	URL       string            `json:"url" yaml:"url"`
	Filename  string            `json:"filename" yaml:"filename"` // with ext
	MimeType  string            `json:"mime_type" yaml:"mime_type"`
	Extension string            `json:"extension" yaml:"extension"`
	Size      int64             `json:"size" yaml:"size"`       // -1 when unknown
	Hash      map[string]string `json:"hash" yaml:"hash"`       // {"md5": "..."}
	Headers   map[string]string `json:"headers" yaml:"headers"` // HTTP headers when downloading
	Extra     map[string]any    `json:"extra" yaml:"extra"`
}

func (r *Resource) FileName() string {
	return r.Filename
}

func (r *Resource) FileSize() int64 {
	return r.Size
}

type Item struct {
	Site        string         `json:"site" yaml:"site"`
	URL         string         `json:"url" yaml:"url"` // original URL of the item
	Title       string         `json:"title" yaml:"title"`
	Author      string         `json:"author" yaml:"author"`
	Description string         `json:"description" yaml:"description"`
	Tags        []string       `json:"tags" yaml:"tags"`
	Resources   []Resource     `json:"resources" yaml:"resources"`
	Extra       map[string]any `json:"extra" yaml:"extra"`
}

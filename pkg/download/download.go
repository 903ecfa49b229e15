package download

import (
	"context"
	"fmt"
	"maps"
)

// Download is a single resolved file ready to be fetched by the host.
type Download struct {
	URL       string            `json:"url"`
	Filename  string            `json:"filename"` // {id}.{ext}
	Extension string            `json:"extension"`
	ID        string            `json:"id"`
	Category  string            `json:"category"`
	Source    string            `json:"source"` // page URL the download was resolved from
	Headers   map[string]string `json:"headers"`
	Metadata  map[string]any    `json:"metadata"`
}

// Resolver is implemented by parsers that can produce a Download directly,
// without going through the host's Item shape.
//
// A nil Download with a nil error means the URL resolved to nothing downloadable.
type Resolver interface {
	ResolveURL(ctx context.Context, url string) (*Download, error)
}

func FileName(id, ext string) string {
	return fmt.Sprintf("%s.%s", id, ext)
}

// Clone returns a copy whose maps can be modified without touching d.
func (d *Download) Clone() *Download {
	if d == nil {
		return nil
	}
	c := *d
	c.Headers = maps.Clone(d.Headers)
	c.Metadata = maps.Clone(d.Metadata)
	return &c
}

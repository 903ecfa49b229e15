// Package sink converts a resolved download into the shape a host pipeline consumes.
// Resolution code only ever produces download.Download; the wire shape is chosen here.
package sink

import (
	"fmt"
	"maps"
	"strings"

	"github.com/krau/sankaku-dl/pkg/download"
	"github.com/krau/sankaku-dl/pkg/parser"
)

type Shape string

const (
	ShapeItem     Shape = "item"
	ShapeCombined Shape = "combined"
	ShapeMessages Shape = "messages"
)

var Shapes = []Shape{ShapeItem, ShapeCombined, ShapeMessages}

func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeItem, "":
		return ShapeItem, nil
	case ShapeCombined:
		return ShapeCombined, nil
	case ShapeMessages:
		return ShapeMessages, nil
	}
	return "", fmt.Errorf("unknown output shape %q, expected one of %v", s, Shapes)
}

type MessageType string

const (
	MessageDirectory MessageType = "directory"
	MessageURL       MessageType = "url"
)

// Message is one control message of the two-step announcement: a directory
// message carrying the metadata, then a url message for the file itself.
type Message struct {
	Type MessageType    `json:"type" yaml:"type"`
	URL  string         `json:"url,omitempty" yaml:"url,omitempty"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Encode serializes dl into the given shape. A nil dl encodes as nil.
func Encode(shape Shape, dl *download.Download) (any, error) {
	if dl == nil {
		return nil, nil
	}
	switch shape {
	case ShapeItem, "":
		return ToItem(dl), nil
	case ShapeCombined:
		return ToCombined(dl), nil
	case ShapeMessages:
		return ToMessages(dl), nil
	}
	return nil, fmt.Errorf("unknown output shape %q", shape)
}

func ToItem(dl *download.Download) *parser.Item {
	item := &parser.Item{
		Site:  dl.Category,
		URL:   dl.Source,
		Title: dl.Filename,
		Tags:  tagsOf(dl),
		Extra: maps.Clone(dl.Metadata),
	}
	if author, ok := dl.Metadata["author"].(string); ok {
		item.Author = author
	}
	res := parser.Resource{
		URL:       dl.URL,
		Filename:  dl.Filename,
		Extension: dl.Extension,
		Size:      -1,
		Headers:   maps.Clone(dl.Headers),
		Extra:     map[string]any{"id": dl.ID},
	}
	if size, ok := dl.Metadata["file_size"].(int64); ok && size > 0 {
		res.Size = size
	}
	if md5, ok := dl.Metadata["md5"].(string); ok && md5 != "" {
		res.Hash = map[string]string{"md5": md5}
	}
	if mt, ok := dl.Metadata["file_type"].(string); ok {
		res.MimeType = mt
	}
	item.Resources = []parser.Resource{res}
	return item
}

// ToCombined returns a single flat record: file fields, metadata keys at the
// top level, the target directory and the request headers under "_headers".
func ToCombined(dl *download.Download) map[string]any {
	rec := make(map[string]any, len(dl.Metadata)+7)
	maps.Copy(rec, dl.Metadata)
	rec["url"] = dl.URL
	rec["filename"] = dl.Filename
	rec["extension"] = dl.Extension
	rec["id"] = dl.ID
	rec["directory"] = []string{dl.Category}
	rec["_headers"] = maps.Clone(dl.Headers)
	return rec
}

func ToMessages(dl *download.Download) []Message {
	data := make(map[string]any, len(dl.Metadata)+6)
	maps.Copy(data, dl.Metadata)
	data["id"] = dl.ID
	data["category"] = dl.Category
	data["filename"] = dl.Filename
	data["extension"] = dl.Extension
	data["_headers"] = maps.Clone(dl.Headers)
	return []Message{
		{Type: MessageDirectory, Data: data},
		{Type: MessageURL, URL: dl.URL, Data: maps.Clone(data)},
	}
}

func tagsOf(dl *download.Download) []string {
	tags, ok := dl.Metadata["tags"].([]string)
	if !ok {
		return make([]string, 0)
	}
	return append([]string(nil), tags...)
}

package sankaku

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	"golang.org/x/text/unicode/norm"
)

// PostRecord is a post as returned by either API route. Every field is optional
// and a field of an unexpected JSON type decodes as absent instead of failing.
type PostRecord struct {
	ID         text    `json:"id"`
	FileURL    text    `json:"file_url"`
	FileExt    text    `json:"file_ext"`
	Extension  text    `json:"extension"`
	FileType   text    `json:"file_type"`
	FileSize   number  `json:"file_size"`
	MD5        text    `json:"md5"`
	Source     text    `json:"source"`
	Author     author  `json:"author"`
	AuthorName text    `json:"author_name"`
	Width      number  `json:"width"`
	Height     number  `json:"height"`
	Rating     text    `json:"rating"`
	CreatedAt  any     `json:"created_at"`
	Tags       tagList `json:"tags"`
}

func (p *PostRecord) AuthorDisplay() string {
	if p.Author.Name != "" {
		return p.Author.Name
	}
	return string(p.AuthorName)
}

// TagNames returns the display names of all tags, dropping entries that have none.
func (p *PostRecord) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, norm.NFC.String(strings.TrimSpace(t.String())))
	}
	return slice.Compact(names)
}

// Metadata is the record's descriptive fields; absent values are nil.
func (p *PostRecord) Metadata() map[string]any {
	return map[string]any{
		"width":      p.Width.value(),
		"height":     p.Height.value(),
		"rating":     p.Rating.value(),
		"created_at": p.CreatedAt,
		"tags":       p.TagNames(),
		"author":     text(p.AuthorDisplay()).value(),
		"md5":        p.MD5.value(),
		"file_size":  p.FileSize.value(),
		"file_type":  p.FileType.value(),
		"source":     p.Source.value(),
	}
}

// TagKind distinguishes the two shapes a tag comes in.
type TagKind uint8

const (
	TagMalformed TagKind = iota
	TagPlain
	TagNamed
)

// Tag is either a bare string or an object carrying name_en and name.
type Tag struct {
	Kind   TagKind
	Raw    string
	Name   string
	NameEn string
}

func PlainTag(s string) Tag {
	return Tag{Kind: TagPlain, Raw: s}
}

func NamedTag(nameEn, name string) Tag {
	return Tag{Kind: TagNamed, NameEn: nameEn, Name: name}
}

// String resolves the display name: name_en, then name, then the raw string.
func (t Tag) String() string {
	switch {
	case t.NameEn != "":
		return t.NameEn
	case t.Name != "":
		return t.Name
	default:
		return t.Raw
	}
}

func (t *Tag) UnmarshalJSON(b []byte) error {
	*t = Tag{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = PlainTag(s)
		}
	case '{':
		var named struct {
			NameEn text `json:"name_en"`
			Name   text `json:"name"`
		}
		if err := json.Unmarshal(b, &named); err == nil {
			*t = NamedTag(string(named.NameEn), string(named.Name))
		}
	}
	return nil
}

type tagList []Tag

func (l *tagList) UnmarshalJSON(b []byte) error {
	var tags []Tag
	if err := json.Unmarshal(b, &tags); err != nil {
		*l = nil
		return nil
	}
	*l = tags
	return nil
}

type author struct {
	Name string
}

func (a *author) UnmarshalJSON(b []byte) error {
	*a = author{}
	var obj struct {
		Name text `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		a.Name = string(obj.Name)
		return nil
	}
	var s text
	if err := json.Unmarshal(b, &s); err == nil {
		a.Name = string(s)
	}
	return nil
}

// text accepts a JSON string or number; anything else leaves it empty.
type text string

func (s *text) UnmarshalJSON(b []byte) error {
	*s = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err == nil {
			*s = text(v)
		}
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*s = text(b)
	}
	return nil
}

func (s text) value() any {
	if s == "" {
		return nil
	}
	return string(s)
}

// number accepts a JSON number or a numeric string.
type number struct {
	v     int64
	valid bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	*n = number{}
	str := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if v, err := strconv.ParseInt(str, 10, 64); err == nil {
		*n = number{v: v, valid: true}
		return nil
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil {
		*n = number{v: int64(f), valid: true}
	}
	return nil
}

func (n number) value() any {
	if !n.valid {
		return nil
	}
	return n.v
}

// CreatedTime interprets a created_at value in any of the forms the API has
// used: {"s": unix}, a bare unix timestamp, or an RFC 3339 / date-time string.
func CreatedTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case map[string]any:
		if s, ok := t["s"].(float64); ok {
			return time.Unix(int64(s), 0), true
		}
	case float64:
		return time.Unix(int64(t), 0), true
	case int64:
		return time.Unix(t, 0), true
	case string:
		for _, layout := range []string{time.RFC3339, time.DateTime, "2006-01-02 15:04", time.DateOnly} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

package strutil

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

func HashString(s string) string {
	hash := md5.New()
	hash.Write([]byte(s))
	return hex.EncodeToString(hash.Sum(nil))
}

// ExtFromURL returns the suffix after the last '.' of the URL's final path
// segment, ignoring query and fragment. "" when there is none.
func ExtFromURL(u string) string {
	p, _, _ := strings.Cut(u, "?")
	p, _, _ = strings.Cut(p, "#")
	if parsed, err := url.Parse(p); err == nil && parsed.Host != "" {
		p = parsed.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

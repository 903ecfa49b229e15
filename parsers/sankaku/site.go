package sankaku

import (
	"fmt"
	"regexp"
	"strings"
)

type Site struct {
	Domain    string
	APIDomain string
	Category  string
}

var (
	SiteSankaku = Site{
		Domain:    "sankaku.app",
		APIDomain: "sankakuapi.com",
		Category:  "sankaku",
	}
	SiteIdolComplex = Site{
		Domain:    "idolcomplex.com",
		APIDomain: "i.sankakuapi.com",
		Category:  "idolcomplex",
	}

	sites = map[string]Site{
		SiteSankaku.Domain:     SiteSankaku,
		SiteIdolComplex.Domain: SiteIdolComplex,
	}
)

var (
	postURLRegexp = regexp.MustCompile(`(?i)https?://(?:www\.)?(idolcomplex\.com|sankaku\.app)/(?:[a-z]{2}(?:-[a-z]{2,4})?/)?posts/(\w+)`)
	postIDRegexp  = regexp.MustCompile(`^\w+$`)
)

// Origin is the site root, used for Referer.
func (s Site) Origin() string {
	return fmt.Sprintf("https://%s/", s.Domain)
}

func SiteByDomain(domain string) (Site, bool) {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	s, ok := sites[domain]
	return s, ok
}

func Sites() []Site {
	return []Site{SiteSankaku, SiteIdolComplex}
}

type PostReference struct {
	Site   Site
	PostID string
}

func NewPostReference(domain, postID string) (PostReference, error) {
	site, ok := SiteByDomain(domain)
	if !ok {
		return PostReference{}, fmt.Errorf("%w: unknown domain %q", ErrInvalidURL, domain)
	}
	if !postIDRegexp.MatchString(postID) {
		return PostReference{}, fmt.Errorf("%w: invalid post id %q", ErrInvalidURL, postID)
	}
	return PostReference{Site: site, PostID: postID}, nil
}

// URL is the canonical post page URL.
func (r PostReference) URL() string {
	return fmt.Sprintf("https://%s/posts/%s", r.Site.Domain, r.PostID)
}

func MatchURL(u string) (PostReference, bool) {
	matches := postURLRegexp.FindStringSubmatch(u)
	if len(matches) < 3 {
		return PostReference{}, false
	}
	ref, err := NewPostReference(matches[1], matches[2])
	if err != nil {
		return PostReference{}, false
	}
	return ref, true
}

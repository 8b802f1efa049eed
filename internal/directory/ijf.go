package directory

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/linker-cli/internal/model"
)

// DefaultIJFBaseURL is the production IJF site.
const DefaultIJFBaseURL = "https://www.ijf.org"

var (
	ijfProfileRe     = regexp.MustCompile(`(https?://[^/]+/judoka/\d+)`)
	ijfTitleSuffixRe = regexp.MustCompile(`(?i)\s*[-|/]\s*IJF.*$`)
)

// IJF resolves names against the International Judo Federation site.
type IJF struct {
	baseURL string
}

// NewIJF creates the IJF directory. baseURL overrides the production site,
// mainly for tests.
func NewIJF(baseURL string) *IJF {
	if baseURL == "" {
		baseURL = DefaultIJFBaseURL
	}
	return &IJF{baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *IJF) Name() string { return "ijf" }

func (d *IJF) SearchURL(query string, page int) string {
	u := fmt.Sprintf("%s/search?query=%s", d.baseURL, url.QueryEscape(query))
	if page > 1 {
		u += fmt.Sprintf("&page=%d", page)
	}
	return u
}

func (d *IJF) Match(profileURL string) bool {
	return strings.HasPrefix(profileURL, d.baseURL+"/judoka/")
}

func (d *IJF) Candidates(page []byte) []model.Candidate {
	doc := parsePage(page)
	if doc == nil {
		return nil
	}

	out := newCollector()
	eachAnchor(doc, func(href, text string) {
		if !strings.Contains(href, "/judoka/") {
			return
		}
		u := href
		if !strings.HasPrefix(u, "http") {
			u = d.baseURL + "/" + strings.TrimLeft(u, "/")
		}
		m := ijfProfileRe.FindStringSubmatch(u)
		if m == nil {
			return
		}
		out.add(m[1], text)
	})
	return out.list()
}

func (d *IJF) DisplayName(page []byte) string {
	return profileName(page, ijfTitleSuffixRe)
}

package directory

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/linker-cli/internal/model"
)

// DefaultJudoInsideBaseURL is the production JudoInside site.
const DefaultJudoInsideBaseURL = "https://judoinside.com"

var judoInsideTitleSuffixRe = regexp.MustCompile(`(?i)\s*-\s*JudoInside.*$`)

// JudoInside resolves names against judoinside.com.
type JudoInside struct {
	baseURL string
}

// NewJudoInside creates the JudoInside directory.
func NewJudoInside(baseURL string) *JudoInside {
	if baseURL == "" {
		baseURL = DefaultJudoInsideBaseURL
	}
	return &JudoInside{baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *JudoInside) Name() string { return "judoinside" }

func (d *JudoInside) SearchURL(query string, page int) string {
	u := fmt.Sprintf("%s/search?query=%s", d.baseURL, url.QueryEscape(query))
	if page > 1 {
		u += fmt.Sprintf("&page=%d", page)
	}
	return u
}

func (d *JudoInside) Match(profileURL string) bool {
	return strings.HasPrefix(profileURL, d.baseURL+"/judoka/")
}

func (d *JudoInside) Candidates(page []byte) []model.Candidate {
	doc := parsePage(page)
	if doc == nil {
		return nil
	}

	out := newCollector()
	eachAnchor(doc, func(href, text string) {
		switch {
		case strings.HasPrefix(href, "/judoka/"):
			out.add(d.baseURL+href, text)
		case strings.HasPrefix(href, d.baseURL+"/judoka/"):
			out.add(href, text)
		}
	})
	return out.list()
}

func (d *JudoInside) DisplayName(page []byte) string {
	return profileName(page, judoInsideTitleSuffixRe)
}

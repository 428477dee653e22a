// Package enrich fetches best-effort previews of job posting links.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/normalize"
)

// ErrNoPreview is returned when a page yields neither title nor company.
var ErrNoPreview = errors.New("no preview found")

// Options configure the HTMLPreviewer.
type Options struct {
	// Client performs the requests. Defaults to a client with Timeout.
	Client *http.Client
	// Timeout bounds every fetch.
	Timeout time.Duration
	// MaxBytes caps the body that is parsed.
	MaxBytes int64
	// UserAgent is sent with every request.
	UserAgent string
}

// HTMLPreviewer implements core.Enricher by reading the page metadata.
type HTMLPreviewer struct {
	opts Options
}

var _ core.Enricher = (*HTMLPreviewer)(nil)

// NewHTMLPreviewer creates a previewer.
func NewHTMLPreviewer(optFns ...func(o *Options)) *HTMLPreviewer {
	opts := Options{
		Timeout:   5 * time.Second,
		MaxBytes:  1 << 20,
		UserAgent: "Mozilla/5.0 (compatible; jobtrack/1.0)",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTMLPreviewer{opts: opts}
}

// FetchPreview downloads url and extracts a job title and company.
func (p *HTMLPreviewer) FetchPreview(ctx context.Context, url string) (core.Preview, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.Preview{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.opts.Client.Do(req)
	if err != nil {
		return core.Preview{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Preview{}, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, p.opts.MaxBytes))
	if err != nil {
		return core.Preview{}, fmt.Errorf("parse %s: %w", url, err)
	}

	preview := extract(metadata(doc))
	if preview.Title == "" && preview.Company == "" {
		return core.Preview{}, ErrNoPreview
	}
	return preview, nil
}

type pageMeta struct {
	ogTitle  string
	siteName string
	title    string
}

func metadata(doc *html.Node) pageMeta {
	var meta pageMeta
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				prop := strings.ToLower(getAttr(n, "property"))
				if prop == "" {
					prop = strings.ToLower(getAttr(n, "name"))
				}
				content := strings.TrimSpace(getAttr(n, "content"))
				switch prop {
				case "og:title", "twitter:title":
					if meta.ogTitle == "" {
						meta.ogTitle = content
					}
				case "og:site_name":
					meta.siteName = content
				}
			case "title":
				if meta.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					meta.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// jobBoards are site names that host postings for other companies.
var jobBoards = map[string]struct{}{
	"linkedin": {}, "indeed": {}, "glassdoor": {}, "greenhouse": {}, "lever": {},
	"workday": {}, "myworkdayjobs": {}, "ashby": {}, "ashbyhq": {}, "wellfound": {},
	"angellist": {}, "ziprecruiter": {}, "monster": {}, "smartrecruiters": {},
	"workable": {}, "jobvite": {}, "icims": {}, "remoteok": {}, "remotive": {},
	"builtin": {}, "dice": {}, "simplyhired": {}, "careerbuilder": {}, "otta": {},
}

func isJobBoard(name string) bool {
	_, ok := jobBoards[normalize.Compact(normalize.Key(name))]
	return ok
}

var (
	hiringPattern = regexp.MustCompile(`(?i)^(.+?)\s+(?:is\s+)?hiring\s+(?:an?\s+)?(.+?)(?:\s+in\s+.+)?$`)
	atPattern     = regexp.MustCompile(`(?i)^(.+?)\s+at\s+(.+)$`)
	separators    = regexp.MustCompile(`\s+[-|–—·]\s+`)
	boardSuffix   = regexp.MustCompile(`(?i)\s*[-|–—·]?\s*(?:job application for\s*)`)
)

// extract applies the title heuristics to the page metadata.
func extract(meta pageMeta) core.Preview {
	raw := meta.ogTitle
	if raw == "" {
		raw = meta.title
	}
	raw = boardSuffix.ReplaceAllString(strings.TrimSpace(raw), "")

	var preview core.Preview
	switch {
	case raw == "":
	case hiringPattern.MatchString(raw):
		m := hiringPattern.FindStringSubmatch(raw)
		preview = core.Preview{Company: m[1], Title: firstSegment(m[2])}
	case atPattern.MatchString(raw):
		m := atPattern.FindStringSubmatch(raw)
		preview = core.Preview{Title: m[1], Company: firstSegment(m[2])}
	default:
		parts := separators.Split(raw, -1)
		preview.Title = parts[0]
		for _, part := range parts[1:] {
			if !isJobBoard(part) && !strings.EqualFold(part, "careers") && !strings.EqualFold(part, "jobs") {
				preview.Company = part
				break
			}
		}
	}

	if preview.Company == "" && meta.siteName != "" && !isJobBoard(meta.siteName) {
		preview.Company = meta.siteName
	}
	if isJobBoard(preview.Company) {
		preview.Company = ""
	}

	preview.Title = normalize.Title(preview.Title)
	preview.Company = normalize.Company(preview.Company)
	return preview
}

func firstSegment(s string) string {
	return separators.Split(s, 2)[0]
}

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FranksOps/seedwatch/internal/bytesize"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Tracker templates mix decimal-looking units with binary semantics:
// "12.5 TB" on a NexusPHP page means 12.5 TiB.
var decimalUnitRe = regexp.MustCompile(`\b([KMGTPE])B\b`)

// canonicalSize converts raw page text like "12.5 TB" or "3.2 GiB" into
// a byte count, rewriting decimal unit spellings to their binary form
// first.
func canonicalSize(raw string) (int64, error) {
	s := decimalUnitRe.ReplaceAllString(strings.TrimSpace(raw), "${1}iB")
	return bytesize.ParseSize(s)
}

// parseCount reads an integer out of page text, tolerating surrounding
// whitespace and the stray parentheses some templates leave around
// peer counts.
func parseCount(raw string) (int, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "()")
	cleaned = strings.TrimSpace(cleaned)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("unparseable count %q", raw)
	}
	return n, nil
}

// nextText returns the trimmed text node immediately following the first
// matched element. NexusPHP templates hang values off marker elements
// ("<font class=color_uploaded>...</font> 12.5 TB") instead of wrapping
// them.
func nextText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	for n := s.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			return strings.TrimSpace(n.Data)
		}
		if n.Type == html.ElementNode {
			break
		}
	}
	return ""
}

// nextElementText returns the trimmed text of the element immediately
// following the first matched element.
func nextElementText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Next().Text())
}

// firstText returns the trimmed first text node inside the matched
// element, stopping at the first child tag.
func firstText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	for n := s.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				return t
			}
		}
		if n.Type == html.ElementNode {
			break
		}
	}
	return ""
}

// contentsText joins all text nodes inside the matched element with
// single spaces, the way "12.5<br>TB" reads as "12.5 TB".
func contentsText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var parts []string
	for n := s.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

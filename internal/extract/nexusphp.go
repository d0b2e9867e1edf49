package extract

import (
	"context"
	"strings"

	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/PuerkitoBio/goquery"
)

// NexusHooks override individual field locations for NexusPHP template
// variants. A nil hook falls back to the stock template location. Hooks
// return the raw page text for the field; normalization happens in
// Extract.
type NexusHooks struct {
	Username func(doc *goquery.Document) (string, error)
	Upload   func(doc *goquery.Document) (string, error)
	Download func(doc *goquery.Document) (string, error)
	Seeding  func(doc *goquery.Document) (string, error)
	Leeching func(doc *goquery.Document) (string, error)
}

// NexusPHP extracts member statistics from the NexusPHP template family.
// The stock template puts the username in the userdetails link and hangs
// transfer totals and peer counts off marker elements in the header bar;
// forks that moved a field get a hook.
type NexusPHP struct {
	Site  string
	URL   string
	Hooks NexusHooks
}

var _ Extractor = (*NexusPHP)(nil)

func (n *NexusPHP) Extract(ctx context.Context, src PageSource, cookie string) (stats.Record, error) {
	doc, err := src.Document(ctx, n.URL, cookie)
	if err != nil {
		return stats.Record{}, err
	}

	var rec stats.Record

	if rec.Username, err = n.username(doc); err != nil {
		return stats.Record{}, err
	}

	uploadRaw, err := n.raw(doc, n.Hooks.Upload, "font.color_uploaded", nextText)
	if err != nil {
		return stats.Record{}, err
	}
	if rec.Upload, err = canonicalSize(uploadRaw); err != nil {
		return stats.Record{}, &DriftError{Site: n.Site, Selector: "upload size: " + err.Error()}
	}

	downloadRaw, err := n.raw(doc, n.Hooks.Download, "font.color_downloaded", nextText)
	if err != nil {
		return stats.Record{}, err
	}
	if rec.Download, err = canonicalSize(downloadRaw); err != nil {
		return stats.Record{}, &DriftError{Site: n.Site, Selector: "download size: " + err.Error()}
	}

	seedingRaw, err := n.raw(doc, n.Hooks.Seeding, "img.arrowup", nextText)
	if err != nil {
		return stats.Record{}, err
	}
	if rec.Seeding, err = parseCount(seedingRaw); err != nil {
		return stats.Record{}, &DriftError{Site: n.Site, Selector: "seeding count: " + err.Error()}
	}

	leechingRaw, err := n.raw(doc, n.Hooks.Leeching, "img.arrowdown", nextText)
	if err != nil {
		return stats.Record{}, err
	}
	if rec.Leeching, err = parseCount(leechingRaw); err != nil {
		return stats.Record{}, &DriftError{Site: n.Site, Selector: "leeching count: " + err.Error()}
	}

	return rec, nil
}

func (n *NexusPHP) username(doc *goquery.Document) (string, error) {
	if n.Hooks.Username != nil {
		return n.Hooks.Username(doc)
	}
	const selector = "a[href^='userdetails'] b"
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", &DriftError{Site: n.Site, Selector: selector}
	}
	return strings.TrimSpace(sel.Text()), nil
}

// raw resolves one field, preferring the hook over the stock location.
func (n *NexusPHP) raw(doc *goquery.Document, hook func(*goquery.Document) (string, error), selector string, pick func(*goquery.Selection) string) (string, error) {
	if hook != nil {
		return hook(doc)
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", &DriftError{Site: n.Site, Selector: selector}
	}
	value := pick(sel)
	if value == "" {
		return "", &DriftError{Site: n.Site, Selector: selector}
	}
	return value, nil
}

// drift builds the package's template-drift error for hook code.
func (n *NexusPHP) drift(selector string) error {
	return &DriftError{Site: n.Site, Selector: selector}
}

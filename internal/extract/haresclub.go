package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/PuerkitoBio/goquery"
)

// haresClub builds the HaresClub extractor. The site runs a layui skin
// over NexusPHP: every stat hangs off a fontawesome icon instead of the
// stock marker elements.
func haresClub() *NexusPHP {
	n := &NexusPHP{Site: "HaresClub", URL: "https://club.hares.top/"}
	n.Hooks = NexusHooks{
		Username: func(doc *goquery.Document) (string, error) {
			const selector = "a[href^='userdetails'] b, a[href^='userdetails'] em"
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", n.drift(selector)
			}
			return strings.TrimSpace(sel.Text()), nil
		},
		Upload:   haresIconValue(n, "i[class='fa fa-arrow-up text-success fa-fw']"),
		Download: haresIconValue(n, "i[class='fa fa-arrow-down layui-font-orange fa-fw']"),
		Seeding:  haresIconValue(n, "i[class='fas fa-upload text-success fa-fw']"),
		Leeching: haresIconValue(n, "i[class='fas fa-download layui-font-red fa-fw']"),
	}
	return n
}

func haresIconValue(n *NexusPHP, selector string) func(*goquery.Document) (string, error) {
	return func(doc *goquery.Document) (string, error) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", n.drift(selector)
		}
		value := nextElementText(sel)
		if value == "" {
			return "", n.drift(selector)
		}
		return value, nil
	}
}

// HaresSearch extracts torrent listings from HaresClub search pages.
type HaresSearch struct {
	Site    string
	BaseURL string
}

var _ Searcher = (*HaresSearch)(nil)

func (h *HaresSearch) Search(ctx context.Context, src PageSource, cookie, keyword string) ([]stats.Torrent, error) {
	searchURL := fmt.Sprintf(
		"%s/torrents.php?search_area=0&search=%s&search_mode=0&incldead=0&spstate=0&check_state=0&can_claim=0&inclbookmarked=0",
		h.BaseURL, url.QueryEscape(keyword),
	)

	doc, err := src.Document(ctx, searchURL, cookie)
	if err != nil {
		return nil, err
	}

	var torrents []stats.Torrent
	var rowErr error

	doc.Find(".torrents tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		titleSel := row.Find(".layui-torrents-title-width a").First()
		if titleSel.Length() == 0 {
			// Header and separator rows carry no title anchor.
			return true
		}

		t := stats.Torrent{
			Site:     h.Site,
			Title:    strings.TrimSpace(titleSel.AttrOr("title", "")),
			Subtitle: strings.TrimSpace(row.Find(".layui-torrents-descr-width").First().Text()),
			Category: row.Find("a[href*='cat'] img").First().AttrOr("title", ""),
			Link:     h.BaseURL + "/" + strings.TrimSpace(titleSel.AttrOr("href", "")),
		}

		t.Seeders = peerCount(row, "a[href*='seeders'] font", "a[href*='seeders']", 6)
		t.Leechers = peerCount(row, "a[href*='leechers']", "", 7)
		t.Snatches = peerCount(row, "a[href*='snatches'] b", "", 8)

		sizeText := contentsText(row.Children().Eq(5))
		size, err := canonicalSize(sizeText)
		if err != nil {
			rowErr = &DriftError{Site: h.Site, Selector: "torrent size cell: " + err.Error()}
			return false
		}
		t.Size = size

		if title := row.Children().Eq(4).Find("span[title]").First().AttrOr("title", ""); title != "" {
			if published, err := time.ParseInLocation("2006-01-02 15:04:05", title, time.Local); err == nil {
				t.Published = published.Unix()
			}
		}

		row.Find("span.tags").Each(func(_ int, tag *goquery.Selection) {
			t.Tags = append(t.Tags, strings.TrimSpace(tag.Text()))
		})

		torrents = append(torrents, t)
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return torrents, nil
}

// peerCount reads a peer counter from its anchor, with the fallbacks the
// template needs for zero-peer rows (plain text instead of a link).
func peerCount(row *goquery.Selection, primary, fallback string, cellIndex int) int {
	sel := row.Find(primary).First()
	if sel.Length() == 0 && fallback != "" {
		sel = row.Find(fallback).First()
	}
	if sel.Length() == 0 {
		sel = row.Children().Eq(cellIndex)
	}
	n, err := parseCount(sel.Text())
	if err != nil {
		return 0
	}
	return n
}

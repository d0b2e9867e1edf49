package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// registry is the static site-identifier-keyed adapter table: the
// extension point for new sites.
var registry = map[string]Adapter{
	"HaresClub": {Extractor: haresClub(), Searcher: &HaresSearch{Site: "HaresClub", BaseURL: "https://club.hares.top"}},

	// Stock NexusPHP template.
	"CHDBits":   {Extractor: &NexusPHP{Site: "CHDBits", URL: "https://chdbits.co/"}},
	"HDSky":     {Extractor: &NexusPHP{Site: "HDSky", URL: "https://hdsky.me/"}},
	"HDHome":    {Extractor: &NexusPHP{Site: "HDHome", URL: "https://hdhome.org/"}},
	"Audiences": {Extractor: &NexusPHP{Site: "Audiences", URL: "https://audiences.me/"}},
	"OurBits":   {Extractor: &NexusPHP{Site: "OurBits", URL: "https://ourbits.club/"}},
	"MTeam":     {Extractor: &NexusPHP{Site: "MTeam", URL: "https://kp.m-team.cc/"}},
	"BeiTai":    {Extractor: &NexusPHP{Site: "BeiTai", URL: "https://www.beitai.pt/"}},
	"TCCF":      {Extractor: &NexusPHP{Site: "TCCF", URL: "https://et8.org/"}},
	"TLFBits":   {Extractor: &NexusPHP{Site: "TLFBits", URL: "https://pt.eastgame.org/"}},
	"PTMSG":     {Extractor: &NexusPHP{Site: "PTMSG", URL: "https://pt.msg.vg/"}},
	"HDFans":    {Extractor: &NexusPHP{Site: "HDFans", URL: "https://hdfans.org/"}},

	// Template variants.
	"PTerClub":     {Extractor: pterClub()},
	"SpringSunDay": {Extractor: springSunDay()},
	"OpenCD":       {Extractor: openCD()},
	"U2":           {Extractor: u2()},
	"HDChina":      {Extractor: hdChina()},
	"LemonHD":      {Extractor: lemonHD()},

	// Gazelle music trackers.
	"DICMusic": {Extractor: &Gazelle{
		Site:             "DICMusic",
		BaseURL:          "https://dicmusic.club",
		UsernameSelector: "a[href^='user.php']",
	}},
	"GPW": {Extractor: &Gazelle{
		Site:             "GPW",
		BaseURL:          "https://greatposterwall.com",
		UsernameSelector: "span.Header-profileName",
		ValuesInSpan:     true,
	}},
}

// pterClub is stock NexusPHP except for rainbow usernames rendered as a
// run of colored spans.
func pterClub() *NexusPHP {
	n := &NexusPHP{Site: "PTerClub", URL: "https://pterclub.com/"}
	n.Hooks.Username = func(doc *goquery.Document) (string, error) {
		const selector = "a[href^='userdetails'] b"
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", n.drift(selector)
		}
		spans := sel.Find("span")
		if spans.Length() == 0 {
			return strings.TrimSpace(sel.Text()), nil
		}
		var b strings.Builder
		spans.Each(func(_ int, span *goquery.Selection) {
			b.WriteString(span.Text())
		})
		return strings.TrimSpace(b.String()), nil
	}
	return n
}

// springSunDay wraps the username in one more span.
func springSunDay() *NexusPHP {
	n := &NexusPHP{Site: "SpringSunDay", URL: "https://springsunday.net/"}
	n.Hooks.Username = func(doc *goquery.Document) (string, error) {
		const selector = "a[href^='userdetails'] b span"
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", n.drift(selector)
		}
		return strings.TrimSpace(sel.Text()), nil
	}
	return n
}

// openCD repeats the download marker; the real value follows the second one.
func openCD() *NexusPHP {
	n := &NexusPHP{Site: "OpenCD", URL: "https://open.cd/"}
	n.Hooks.Download = func(doc *goquery.Document) (string, error) {
		const selector = "font.color_downloaded"
		sel := doc.Find(selector).Eq(1)
		if sel.Length() == 0 {
			return "", n.drift(selector + " (second)")
		}
		value := nextText(sel)
		if value == "" {
			return "", n.drift(selector + " (second)")
		}
		return value, nil
	}
	return n
}

// u2 uses span markers, bidi-wrapped usernames, already-binary units, and
// a parenthesized leeching count.
func u2() *NexusPHP {
	n := &NexusPHP{Site: "U2", URL: "https://u2.dmhy.org/"}
	n.Hooks = NexusHooks{
		Username: func(doc *goquery.Document) (string, error) {
			const selector = "a[href^='userdetails'] b bdo"
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", n.drift(selector)
			}
			return strings.TrimSpace(sel.Text()), nil
		},
		Upload:   u2Marker(n, "span.color_uploaded"),
		Download: u2Marker(n, "span.color_downloaded"),
		Seeding: func(doc *goquery.Document) (string, error) {
			const selector = "img.arrowup"
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", n.drift(selector)
			}
			value := nextElementText(sel)
			if value == "" {
				return "", n.drift(selector)
			}
			return value, nil
		},
		Leeching: func(doc *goquery.Document) (string, error) {
			const selector = "img.arrowdown"
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", n.drift(selector)
			}
			value := strings.ReplaceAll(nextText(sel), ")", "")
			if value == "" {
				return "", n.drift(selector)
			}
			return value, nil
		},
	}
	return n
}

func u2Marker(n *NexusPHP, selector string) func(*goquery.Document) (string, error) {
	return func(doc *goquery.Document) (string, error) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", n.drift(selector)
		}
		value := nextText(sel)
		if value == "" {
			return "", n.drift(selector)
		}
		return value, nil
	}
}

var hdChinaSizeRe = regexp.MustCompile(`\d+(?:\.\d+)? [KMGTPE]i?B`)

// hdChina prints transfer totals inside one prose paragraph and counts
// behind fontawesome arrows.
func hdChina() *NexusPHP {
	n := &NexusPHP{Site: "HDChina", URL: "https://hdchina.org/"}

	sizeFromUserinfo := func(index int) func(*goquery.Document) (string, error) {
		return func(doc *goquery.Document) (string, error) {
			const selector = "div.userinfo p"
			text := doc.Find(selector).Eq(2).Text()
			sizes := hdChinaSizeRe.FindAllString(text, -1)
			if len(sizes) <= index {
				return "", n.drift(selector)
			}
			return sizes[index], nil
		}
	}

	arrowCount := func(selector string, stripParen bool) func(*goquery.Document) (string, error) {
		return func(doc *goquery.Document) (string, error) {
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return "", n.drift(selector)
			}
			value := nextText(sel)
			if stripParen {
				value = strings.ReplaceAll(value, ")", "")
			}
			if value == "" {
				return "", n.drift(selector)
			}
			return value, nil
		}
	}

	n.Hooks = NexusHooks{
		Upload:   sizeFromUserinfo(0),
		Download: sizeFromUserinfo(1),
		Seeding:  arrowCount("i.fas.fa-arrow-up", false),
		Leeching: arrowCount("i.fas.fa-arrow-down", true),
	}
	return n
}

// lemonHD lays everything out positionally in one stats table.
func lemonHD() *NexusPHP {
	n := &NexusPHP{Site: "LemonHD", URL: "https://lemonhd.org/"}

	cell := func(index int, wantSize bool) func(*goquery.Document) (string, error) {
		return func(doc *goquery.Document) (string, error) {
			const selector = `td[class='bottom nowrap']`
			cells := doc.Find(selector)
			if cells.Length() <= index {
				return "", n.drift(selector)
			}
			var value string
			if wantSize {
				value = strings.TrimSpace(cells.Eq(index).Text())
			} else {
				value = firstText(cells.Eq(index))
			}
			if value == "" {
				return "", n.drift(selector)
			}
			return value, nil
		}
	}

	n.Hooks = NexusHooks{
		Upload:   cell(6, true),
		Download: cell(22, true),
		Seeding:  cell(8, false),
		Leeching: cell(24, false),
	}
	return n
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FranksOps/seedwatch/internal/stats"
)

var useridRe = regexp.MustCompile(`userid=(\d+)`)

// Gazelle extracts member statistics from Gazelle-based music trackers.
// The user page carries username, uid and transfer totals; peer counts
// come from one authenticated ajax follow-up.
type Gazelle struct {
	Site    string
	BaseURL string
	// UsernameSelector locates the username element; Gazelle skins move it.
	UsernameSelector string
	// ValuesInSpan is set for skins that wrap the transfer totals in a
	// child span instead of the sibling element.
	ValuesInSpan bool
}

var _ Extractor = (*Gazelle)(nil)

type communityStats struct {
	Response struct {
		Seeding  int `json:"seeding"`
		Leeching int `json:"leeching"`
	} `json:"response"`
}

func (g *Gazelle) Extract(ctx context.Context, src PageSource, cookie string) (stats.Record, error) {
	doc, err := src.Document(ctx, g.BaseURL+"/user.php", cookie)
	if err != nil {
		return stats.Record{}, err
	}

	var rec stats.Record

	userSel := doc.Find(g.UsernameSelector).First()
	if userSel.Length() == 0 {
		return stats.Record{}, &DriftError{Site: g.Site, Selector: g.UsernameSelector}
	}
	rec.Username = strings.TrimSpace(userSel.Text())

	const seedingAnchor = "a[href^='torrents.php?type=seeding&userid=']"
	seedingSel := doc.Find(seedingAnchor).First()
	if seedingSel.Length() == 0 {
		return stats.Record{}, &DriftError{Site: g.Site, Selector: seedingAnchor}
	}

	href, _ := seedingSel.Attr("href")
	m := useridRe.FindStringSubmatch(href)
	if m == nil {
		return stats.Record{}, &DriftError{Site: g.Site, Selector: seedingAnchor + " href userid"}
	}
	rec.UID, _ = strconv.ParseInt(m[1], 10, 64)

	const leechingAnchor = "a[href^='torrents.php?type=leeching&userid=']"
	leechingSel := doc.Find(leechingAnchor).First()
	if leechingSel.Length() == 0 {
		return stats.Record{}, &DriftError{Site: g.Site, Selector: leechingAnchor}
	}

	var uploadRaw, downloadRaw string
	if g.ValuesInSpan {
		uploadRaw = strings.TrimSpace(seedingSel.Find("span").First().Text())
		downloadRaw = strings.TrimSpace(leechingSel.Find("span").First().Text())
	} else {
		uploadRaw = nextElementText(seedingSel)
		downloadRaw = nextElementText(leechingSel)
	}

	if rec.Upload, err = canonicalSize(uploadRaw); err != nil {
		return stats.Record{}, &DriftError{Site: g.Site, Selector: "upload size: " + err.Error()}
	}
	if rec.Download, err = canonicalSize(downloadRaw); err != nil {
		return stats.Record{}, &DriftError{Site: g.Site, Selector: "download size: " + err.Error()}
	}

	statsURL := fmt.Sprintf("%s/ajax.php?action=community_stats&userid=%d", g.BaseURL, rec.UID)
	body, err := src.Get(ctx, statsURL, cookie)
	if err != nil {
		return stats.Record{}, &FollowUpError{Site: g.Site, URL: statsURL, Err: err}
	}

	var cs communityStats
	if err := json.Unmarshal(body, &cs); err != nil {
		return stats.Record{}, &FollowUpError{Site: g.Site, URL: statsURL, Err: err}
	}
	rec.Seeding = cs.Response.Seeding
	rec.Leeching = cs.Response.Leeching

	return rec, nil
}

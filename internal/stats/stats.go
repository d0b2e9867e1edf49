// Package stats defines the normalized statistics contract shared by the
// extraction adapters, the snapshot store, and the site instances.
package stats

// Record is one normalized read of a member's standing on a tracker.
// All sizes are byte counts; raw unit strings never survive extraction.
// UpdateTime is a unix timestamp floored to the start of the hour the
// refresh completed in.
type Record struct {
	Username    string
	UID         int64 // 0 when the site does not expose one
	Upload      int64
	Download    int64
	Seeding     int
	Leeching    int
	SeedingSize int64
	Bonus       float64
	Level       string
	UpdateTime  int64
}

// Torrent is one row of a site's search results.
type Torrent struct {
	Site      string
	Title     string
	Subtitle  string
	Category  string
	Link      string
	Seeders   int
	Leechers  int
	Snatches  int
	Size      int64
	Published int64 // unix timestamp
	Tags      []string
}

// SearchResult carries the listings one site produced for a keyword.
// A site without search support, or one whose search failed, yields an
// empty Torrents slice rather than an error.
type SearchResult struct {
	Site     string
	Torrents []Torrent
}

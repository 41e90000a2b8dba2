// Package feed fetches and transforms Letterboxd activity feeds.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which external metadata id an entry carries.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// Entry is one parsed "watched" log record from the feed.
// Immutable once created; downstream code uses these fields only,
// never the raw XML.
type Entry struct {
	Title    string
	Watched  *time.Time
	Rating   *float64
	ID       int64 // external metadata id, 0 if the feed carried none
	Kind     Kind
	ListPage bool // link targets a /<user>/list/ page, not a film log entry
}

// HasWatched reports whether the entry carries a watched date.
func (e Entry) HasWatched() bool {
	return e.Watched != nil
}

// feedItem is the schema for one <item> element. Letterboxd extends RSS
// with letterboxd: and tmdb: namespaced elements; local-name matching is
// enough since none of them collide.
type feedItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	FilmTitle   string   `xml:"filmTitle"`
	WatchedDate string   `xml:"watchedDate"`
	Rating      *float64 `xml:"memberRating"`
	MovieID     *int64   `xml:"movieId"`
	TVID        *int64   `xml:"tvId"`
}

type feedDoc struct {
	Channel struct {
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
}

// parseEntries decodes the raw feed into typed entries in native feed order.
func parseEntries(raw []byte, username string) ([]Entry, error) {
	var doc feedDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	listPrefix := fmt.Sprintf("/%s/list/", username)

	entries := make([]Entry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := item.FilmTitle
		if title == "" {
			title = item.Title
		}
		if title == "" {
			continue
		}

		e := Entry{
			Title:    title,
			Rating:   item.Rating,
			ListPage: strings.Contains(item.Link, listPrefix),
		}

		if item.WatchedDate != "" {
			watched, err := time.Parse("2006-01-02", item.WatchedDate)
			if err != nil {
				return nil, fmt.Errorf("parse watched date %q: %w", item.WatchedDate, err)
			}
			e.Watched = &watched
		}

		switch {
		case item.MovieID != nil:
			e.ID = *item.MovieID
			e.Kind = KindMovie
		case item.TVID != nil:
			e.ID = *item.TVID
			e.Kind = KindTV
		}

		entries = append(entries, e)
	}

	return entries, nil
}

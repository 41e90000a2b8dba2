package feed

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testItem builds one feed <item>. Empty fields are omitted.
type testItem struct {
	title   string
	watched string // "2006-01-02"
	rating  string
	link    string
	movieID string
	tvID    string
}

func buildFeed(items ...testItem) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<rss version="2.0" xmlns:letterboxd="https://letterboxd.com" xmlns:tmdb="https://themoviedb.org">`)
	b.WriteString(`<channel><title>Letterboxd - someuser</title>`)
	for _, it := range items {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>%s</title>", it.title)
		fmt.Fprintf(&b, "<letterboxd:filmTitle>%s</letterboxd:filmTitle>", it.title)
		if it.watched != "" {
			fmt.Fprintf(&b, "<letterboxd:watchedDate>%s</letterboxd:watchedDate>", it.watched)
		}
		if it.rating != "" {
			fmt.Fprintf(&b, "<letterboxd:memberRating>%s</letterboxd:memberRating>", it.rating)
		}
		link := it.link
		if link == "" {
			link = "https://letterboxd.com/someuser/film/" + SanitizeTitle(it.title) + "/"
		}
		fmt.Fprintf(&b, "<link>%s</link>", link)
		if it.movieID != "" {
			fmt.Fprintf(&b, "<tmdb:movieId>%s</tmdb:movieId>", it.movieID)
		}
		if it.tvID != "" {
			fmt.Fprintf(&b, "<tmdb:tvId>%s</tmdb:tvId>", it.tvID)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return []byte(b.String())
}

func mustTransform(t *testing.T, raw []byte, mode Mode, ref time.Time) *List {
	t.Helper()
	list, err := Transform(raw, "someuser", mode, ref)
	require.NoError(t, err)
	return list
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTransform_DropsUndatedItems(t *testing.T) {
	raw := buildFeed(
		testItem{title: "Dated", watched: "2024-05-01", movieID: "1"},
		testItem{title: "Undated", movieID: "2"},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, []string{"Dated"}, list.Titles())
}

func TestTransform_DedupKeepsEarliestOccurrence(t *testing.T) {
	raw := buildFeed(
		testItem{title: "Alpha", watched: "2024-05-03", rating: "3.5", movieID: "1"},
		testItem{title: "Beta", watched: "2024-05-03", movieID: "2"},
		testItem{title: "Alpha", watched: "2024-05-01", rating: "5", movieID: "1"},
		testItem{title: "Beta", watched: "2024-05-03", movieID: "2"},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, []string{"Alpha", "Beta"}, list.Titles())
	// The survivor is the earliest-index occurrence, so Alpha keeps 3.5.
	assert.Equal(t, []float64{3.5, -1}, list.Ratings())
}

func TestTransform_DropsListPages(t *testing.T) {
	raw := buildFeed(
		testItem{title: "Film", watched: "2024-05-01", movieID: "1"},
		testItem{
			title:   "My Favourites",
			watched: "2024-05-02",
			link:    "https://letterboxd.com/someuser/list/my-favourites/",
		},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, []string{"Film"}, list.Titles())
}

func TestTransform_ListPageFilterScopedToUsername(t *testing.T) {
	// A film whose link happens to mention another user's list path survives.
	raw := buildFeed(
		testItem{
			title:   "Film",
			watched: "2024-05-01",
			link:    "https://letterboxd.com/otheruser/list/something/",
			movieID: "1",
		},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, 1, list.Len())
}

func TestTransform_SortMostRecentFirstStable(t *testing.T) {
	raw := buildFeed(
		testItem{title: "Old", watched: "2024-04-01", movieID: "1"},
		testItem{title: "TieA", watched: "2024-05-02", movieID: "2"},
		testItem{title: "TieB", watched: "2024-05-02", movieID: "3"},
		testItem{title: "New", watched: "2024-05-10", movieID: "4"},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	// Ties keep feed order: TieA before TieB.
	assert.Equal(t, []string{"New", "TieA", "TieB", "Old"}, list.Titles())
}

func TestTransform_ModeCurrentMonth(t *testing.T) {
	raw := buildFeed(
		testItem{title: "ThisMonth", watched: "2024-05-02", movieID: "1"},
		testItem{title: "LastMonth", watched: "2024-04-28", movieID: "2"},
		testItem{title: "LastYearSameMonth", watched: "2023-05-02", movieID: "3"},
	)

	list := mustTransform(t, raw, ModeCurrentMonth, date(2024, time.May, 15))
	assert.Equal(t, []string{"ThisMonth"}, list.Titles())
}

func TestTransform_ModeRecentTruncatesToThirty(t *testing.T) {
	items := make([]testItem, 35)
	for i := range items {
		items[i] = testItem{
			title:   fmt.Sprintf("Film %02d", i),
			watched: date(2024, time.January, 1).AddDate(0, 0, i).Format("2006-01-02"),
			movieID: fmt.Sprintf("%d", i+1),
		}
	}

	list := mustTransform(t, buildFeed(items...), ModeRecent, date(2024, time.May, 15))
	require.Equal(t, RecentLimit, list.Len())

	// Most recent first: the 30 latest of the 35, descending.
	titles := list.Titles()
	assert.Equal(t, "Film 34", titles[0])
	assert.Equal(t, "Film 05", titles[len(titles)-1])
}

func TestTransform_ModeRecentKeepsAllWhenFewerThanLimit(t *testing.T) {
	raw := buildFeed(
		testItem{title: "A", watched: "2024-05-01", movieID: "1"},
		testItem{title: "B", watched: "2024-05-02", movieID: "2"},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, 2, list.Len())
}

// Scenario: duplicate of X plus an out-of-month Y leaves only the earliest X.
func TestTransform_DedupAndMonthSelection(t *testing.T) {
	raw := buildFeed(
		testItem{title: "X", watched: "2024-05-01", movieID: "1"},
		testItem{title: "X", watched: "2024-05-10", movieID: "1"},
		testItem{title: "Y", watched: "2024-04-20", movieID: "2"},
	)

	list := mustTransform(t, raw, ModeCurrentMonth, date(2024, time.May, 15))
	require.Equal(t, 1, list.Len())
	assert.Equal(t, []string{"X"}, list.Titles())
	assert.Equal(t, date(2024, time.May, 1), *list.LastWatched())
}

func TestTransform_UnknownMode(t *testing.T) {
	_, err := Transform(buildFeed(), "someuser", Mode(7), time.Now())
	assert.Error(t, err)
}

func TestTransform_BadXML(t *testing.T) {
	_, err := Transform([]byte("<rss><channel><item>"), "someuser", ModeRecent, time.Now())
	assert.Error(t, err)
}

func TestList_Keys(t *testing.T) {
	raw := buildFeed(
		testItem{title: "Movie", watched: "2024-05-03", movieID: "603"},
		testItem{title: "Show", watched: "2024-05-02", tvID: "1396"},
		testItem{title: "NoID", watched: "2024-05-01"},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, []Key{
		{ID: 603, Kind: KindMovie},
		{ID: 1396, Kind: KindTV},
		{ID: 0, Kind: ""},
	}, list.Keys())
}

func TestList_PosterFiles(t *testing.T) {
	raw := buildFeed(
		testItem{title: "The Matrix", watched: "2024-05-01", movieID: "603"},
	)

	list := mustTransform(t, raw, ModeRecent, date(2024, time.May, 15))
	assert.Equal(t, []string{"images/The-Matrix.png"}, list.PosterFiles("images"))
}

func TestList_LastWatchedIsOldestKept(t *testing.T) {
	items := make([]testItem, 35)
	for i := range items {
		items[i] = testItem{
			title:   fmt.Sprintf("Film %02d", i),
			watched: date(2024, time.January, 1).AddDate(0, 0, i).Format("2006-01-02"),
			movieID: fmt.Sprintf("%d", i+1),
		}
	}

	list := mustTransform(t, buildFeed(items...), ModeRecent, date(2024, time.May, 15))
	// Oldest of the kept 30, not the oldest overall and not the newest.
	assert.Equal(t, date(2024, time.January, 6), *list.LastWatched())
}

func TestList_LastWatchedEmpty(t *testing.T) {
	list := mustTransform(t, buildFeed(), ModeRecent, time.Now())
	assert.True(t, list.Empty())
	assert.Nil(t, list.LastWatched())
}

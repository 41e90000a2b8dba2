package build

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamamia96/moviemosaic/internal/feed"
	"github.com/mamamia96/moviemosaic/internal/poster"
)

type fakeSource struct {
	raw     []byte
	err     error
	fetches int
}

func (f *fakeSource) Fetch(ctx context.Context, username string) ([]byte, error) {
	f.fetches++
	return f.raw, f.err
}

type fakeMetadata struct {
	directors map[feed.Key]string
	posters   map[feed.Key]string
	err       error
}

func (f *fakeMetadata) Director(ctx context.Context, key feed.Key) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.directors[key], nil
}

func (f *fakeMetadata) PosterURL(ctx context.Context, key feed.Key) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.posters[key], nil
}

type fakePosters struct {
	batches [][]poster.Pair
	err     error
}

func (f *fakePosters) DownloadBatch(ctx context.Context, pairs []poster.Pair) error {
	f.batches = append(f.batches, pairs)
	return f.err
}

func feedXML(items ...string) []byte {
	return []byte(`<?xml version="1.0"?>` +
		`<rss xmlns:letterboxd="https://letterboxd.com" xmlns:tmdb="https://themoviedb.org">` +
		`<channel>` + strings.Join(items, "") + `</channel></rss>`)
}

func item(title, watched string, movieID int64) string {
	return fmt.Sprintf(`<item><title>%s</title><letterboxd:filmTitle>%s</letterboxd:filmTitle>`+
		`<letterboxd:watchedDate>%s</letterboxd:watchedDate>`+
		`<link>https://letterboxd.com/u/film/x/</link>`+
		`<tmdb:movieId>%d</tmdb:movieId></item>`, title, title, watched, movieID)
}

func fixedNow() time.Time {
	return time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
}

func testDeps(src Source, meta Metadata, posters Posters) Deps {
	return Deps{
		Source:    src,
		Metadata:  meta,
		Posters:   posters,
		PosterDir: "images",
		Now:       fixedNow,
	}
}

func TestBuilder_FreshBuild(t *testing.T) {
	src := &fakeSource{raw: feedXML(
		item("Alpha", "2024-05-02", 1),
		item("Beta", "2024-05-01", 2),
	)}
	meta := &fakeMetadata{
		directors: map[feed.Key]string{
			{ID: 1, Kind: feed.KindMovie}: "Director One",
			{ID: 2, Kind: feed.KindMovie}: "Director Two",
		},
		posters: map[feed.Key]string{
			{ID: 1, Kind: feed.KindMovie}: "https://img.test/1.jpg",
			// Beta has no poster.
		},
	}
	posterFake := &fakePosters{}

	b := New("u", feed.ModeCurrentMonth, testDeps(src, meta, posterFake))
	st := b.Build(context.Background())
	require.True(t, st.OK)
	assert.Equal(t, KindOK, st.Kind)

	records, err := b.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Record{
		Title:      "Alpha",
		Director:   "Director One",
		Rating:     -1,
		PosterPath: "images/Alpha.png",
		PosterURL:  "https://img.test/1.jpg",
	}, records[0])

	// No remote poster means no local path either.
	assert.Equal(t, "Beta", records[1].Title)
	assert.Equal(t, "", records[1].PosterURL)
	assert.Equal(t, "", records[1].PosterPath)

	require.Len(t, posterFake.batches, 1)
	assert.Equal(t, []poster.Pair{
		{Filename: "images/Alpha.png", URL: "https://img.test/1.jpg"},
		{Filename: "", URL: ""},
	}, posterFake.batches[0])
}

func TestBuilder_NoFeed(t *testing.T) {
	src := &fakeSource{raw: []byte("<title>Letterboxd - Not Found</title>")}

	b := New("ghost", feed.ModeRecent, testDeps(src, &fakeMetadata{}, &fakePosters{}))
	st := b.Build(context.Background())

	assert.False(t, st.OK)
	assert.Equal(t, KindNoFeed, st.Kind)
	assert.Equal(t, "no feed for ghost", st.Message)
}

func TestBuilder_NoValidEntries(t *testing.T) {
	src := &fakeSource{raw: feedXML()}

	b := New("u", feed.ModeRecent, testDeps(src, &fakeMetadata{}, &fakePosters{}))
	st := b.Build(context.Background())

	assert.False(t, st.OK)
	assert.Equal(t, KindNoEntries, st.Kind)
	assert.Equal(t, "no valid entries for u", st.Message)
}

func TestBuilder_FetchFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}

	b := New("u", feed.ModeRecent, testDeps(src, &fakeMetadata{}, &fakePosters{}))
	st := b.Build(context.Background())

	assert.False(t, st.OK)
	assert.Equal(t, KindFetchFailed, st.Kind)
	assert.NotEmpty(t, st.Message)
}

func TestBuilder_EnrichmentFaultsDegradeToAbsent(t *testing.T) {
	src := &fakeSource{raw: feedXML(item("Alpha", "2024-05-02", 1))}
	meta := &fakeMetadata{err: errors.New("tmdb down")}

	b := New("u", feed.ModeCurrentMonth, testDeps(src, meta, &fakePosters{}))
	st := b.Build(context.Background())
	require.True(t, st.OK)

	records, err := b.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Director)
	assert.Equal(t, "", records[0].PosterURL)
	assert.Equal(t, "", records[0].PosterPath)
}

func TestBuilder_RehydrateWithFailure(t *testing.T) {
	src := &fakeSource{}
	prior := Fail(KindNoFeed, "no feed for u")

	b := New("u", feed.ModeRecent, testDeps(src, &fakeMetadata{}, &fakePosters{}), WithStatus(prior))
	st := b.Build(context.Background())

	assert.Equal(t, prior, st)
	assert.Zero(t, src.fetches, "rehydrated builder must not touch the network")
}

func TestBuilder_RehydrateWithData(t *testing.T) {
	src := &fakeSource{}
	last := fixedNow()
	records := []Record{{Title: "Alpha", Rating: 4}}

	b := New("u", feed.ModeRecent, testDeps(src, &fakeMetadata{}, &fakePosters{}),
		WithRecords(records, &last))
	st := b.Build(context.Background())

	require.True(t, st.OK)
	assert.Zero(t, src.fetches)

	got, err := b.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, got)
	assert.Equal(t, &last, b.LastWatched())
}

func TestBuilder_RecordsBeforeBuild(t *testing.T) {
	b := New("u", feed.ModeRecent, testDeps(&fakeSource{}, &fakeMetadata{}, &fakePosters{}))
	_, err := b.Records(context.Background())
	assert.Error(t, err)
}

func TestBuilder_RecordsAfterFailedBuild(t *testing.T) {
	src := &fakeSource{raw: []byte("<title>Letterboxd - Not Found</title>")}
	b := New("u", feed.ModeRecent, testDeps(src, &fakeMetadata{}, &fakePosters{}))
	b.Build(context.Background())

	_, err := b.Records(context.Background())
	assert.Error(t, err)
}

func TestBuilder_LastWatchedOnlyForRecentMode(t *testing.T) {
	raw := feedXML(
		item("Alpha", "2024-05-02", 1),
		item("Beta", "2024-05-01", 2),
	)

	monthly := New("u", feed.ModeCurrentMonth, testDeps(&fakeSource{raw: raw}, &fakeMetadata{}, &fakePosters{}))
	require.True(t, monthly.Build(context.Background()).OK)
	assert.Nil(t, monthly.LastWatched())

	recent := New("u", feed.ModeRecent, testDeps(&fakeSource{raw: raw}, &fakeMetadata{}, &fakePosters{}))
	require.True(t, recent.Build(context.Background()).OK)
	require.NotNil(t, recent.LastWatched())
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), *recent.LastWatched())
}

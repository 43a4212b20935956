package query

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ope/internal/errors"
	"github.com/conneroisu/ope/internal/reviews"
)

func fixture() []reviews.Review {
	return []reviews.Review{
		{SongArtist: "Morgan Wallen", SongTitle: "I'm The Problem", SongGenre: "Country", ReviewScore: 2, ReviewText: "Loud, proud and tired.", ReviewID: "morgan-wallen-im-the-problem-song-review", ReviewDate: "May 16, 2025"},
		{SongArtist: "Wednesday", SongTitle: "Bitter Everyday", SongGenre: "Rock", ReviewScore: 0.5, ReviewText: "Mildew and regret.", ReviewID: "wednesday-bitter-everyday-song-review", ReviewDate: "August 19, 2025"},
		{SongArtist: "Morgan Wallen", SongTitle: "Lies Lies Lies", ReviewScore: 2, ReviewText: "Wallen again.", ReviewID: "morgan-wallen-lies-lies-lies-song-review", ReviewDate: "July 1, 2025"},
		{SongArtist: "Horses 4k", SongTitle: `Say "Neigh"`, SongGenre: "Rock", ReviewScore: 3.5, ReviewText: "A pony, mostly.", ReviewID: "horses-4k-say-neigh-song-review", ReviewDate: "August 15, 2025", SongURL: "https://youtu.be/h"},
	}
}

func ids(rs []reviews.Review) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ReviewID
	}
	return out
}

func TestPaginate(t *testing.T) {
	all := fixture()

	testCases := []struct {
		name          string
		page, perPage int
		expectedIDs   []string
		expectedMeta  Pagination
	}{
		{
			name: "second page of one", page: 2, perPage: 1,
			expectedIDs:  []string{all[1].ReviewID},
			expectedMeta: Pagination{Page: 2, PerPage: 1, Total: 4, Pages: 4},
		},
		{
			name: "defaults", page: 0, perPage: 0,
			expectedIDs:  ids(all),
			expectedMeta: Pagination{Page: 1, PerPage: 10, Total: 4, Pages: 1},
		},
		{
			name: "partial last page", page: 2, perPage: 3,
			expectedIDs:  []string{all[3].ReviewID},
			expectedMeta: Pagination{Page: 2, PerPage: 3, Total: 4, Pages: 2},
		},
		{
			name: "out of range", page: 9, perPage: 2,
			expectedIDs:  []string{},
			expectedMeta: Pagination{Page: 9, PerPage: 2, Total: 4, Pages: 2},
		},
		{
			name: "negative values fall back", page: -3, perPage: -1,
			expectedIDs:  ids(all),
			expectedMeta: Pagination{Page: 1, PerPage: 10, Total: 4, Pages: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(all, tc.page, tc.perPage)
			assert.Equal(t, tc.expectedIDs, ids(got.Reviews))
			assert.Equal(t, tc.expectedMeta, got.Pagination)
			assert.NotNil(t, got.Reviews)
		})
	}
}

func TestPaginateEmptyAndHugePage(t *testing.T) {
	got := Paginate(nil, 1, 10)
	assert.Empty(t, got.Reviews)
	assert.Equal(t, Pagination{Page: 1, PerPage: 10, Total: 0, Pages: 0}, got.Pagination)

	got = Paginate(fixture(), int(^uint(0)>>1), 10)
	assert.Empty(t, got.Reviews)
}

func TestPaginateDoesNotAlias(t *testing.T) {
	all := fixture()
	got := Paginate(all, 1, 2)
	got.Reviews[0].ReviewID = "changed"
	assert.Equal(t, "morgan-wallen-im-the-problem-song-review", all[0].ReviewID)
}

func TestSearch(t *testing.T) {
	all := fixture()

	testCases := []struct {
		name     string
		query    string
		expected []string
	}{
		{"conjunctive", "morgan wallen", []string{all[0].ReviewID, all[2].ReviewID}},
		{"case insensitive", "  MORGAN   Problem ", []string{all[0].ReviewID}},
		{"substring not word", "wall", []string{all[0].ReviewID, all[2].ReviewID}},
		{"review text", "mildew", []string{all[1].ReviewID}},
		{"spans fields", "horses pony", []string{all[3].ReviewID}},
		{"no match", "morgan mildew", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Search(all, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(got.Results))
			assert.Equal(t, len(tc.expected), got.TotalResults)
		})
	}
}

func TestSearchEchoesLowerCasedQuery(t *testing.T) {
	got, err := Search(fixture(), " Morgan Wallen ")
	require.NoError(t, err)
	assert.Equal(t, "morgan wallen", got.Query)
}

func TestSearchEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := Search(fixture(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(err))
	}
}

func TestFind(t *testing.T) {
	all := fixture()

	got, err := Find(all, "wednesday-bitter-everyday-song-review")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", got.SongArtist)

	_, err = Find(all, "WEDNESDAY-bitter-everyday-song-review")
	assert.ErrorIs(t, err, ErrNotFound, "lookups are exact match")
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatus(err))

	_, err = Find(all, "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestAnalyze(t *testing.T) {
	got, err := Analyze(fixture())
	require.NoError(t, err)

	expected := Summary{
		TotalReviews:       4,
		RatingDistribution: map[string]int{"2": 2, "0.5": 1, "3.5": 1},
		ArtistCounts:       map[string]int{"Morgan Wallen": 2, "Wednesday": 1, "Horses 4k": 1},
		GenreCounts:        map[string]int{"Country": 1, "Rock": 2},
		MostReviewedArtist: ArtistCount{Artist: "Morgan Wallen", Count: 2},
		AverageRating:      2,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Analyze() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeTieBreakIsFirstSeen(t *testing.T) {
	all := []reviews.Review{
		{SongArtist: "B", ReviewScore: 1},
		{SongArtist: "A", ReviewScore: 2},
		{SongArtist: "A", ReviewScore: 2},
		{SongArtist: "B", ReviewScore: 1},
	}
	got, err := Analyze(all)
	require.NoError(t, err)
	assert.Equal(t, ArtistCount{Artist: "B", Count: 2}, got.MostReviewedArtist)
	assert.Equal(t, 1.5, got.AverageRating)
}

func TestAnalyzeAverageRounding(t *testing.T) {
	got, err := Analyze([]reviews.Review{{ReviewScore: 1}, {ReviewScore: 1}, {ReviewScore: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1.33, got.AverageRating)
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatus(err))
}

func TestSummaryJSON(t *testing.T) {
	got, err := Analyze(fixture()[:1])
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"most_reviewed_artist":["Morgan Wallen",1]`)

	var back Summary
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, got, back)
}

func TestExportCSV(t *testing.T) {
	out, err := ExportCSV(fixture())
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "review_id,song_title,song_artist,review_date,review_score,review_text,song_url", lines[0])
	assert.Equal(t,
		`"morgan-wallen-im-the-problem-song-review","I'm The Problem","Morgan Wallen","May 16, 2025",2,"Loud; proud and tired.",""`,
		lines[1])
	assert.Equal(t,
		`"horses-4k-say-neigh-song-review","Say ""Neigh""","Horses 4k","August 15, 2025",3.5,"A pony; mostly.","https://youtu.be/h"`,
		lines[4])
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestExportCSVEmpty(t *testing.T) {
	_, err := ExportCSV([]reviews.Review{})
	assert.ErrorIs(t, err, ErrNoRecords)
}

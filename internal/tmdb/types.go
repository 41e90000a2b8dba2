// Package tmdb provides a client for The Movie Database API.
package tmdb

// MediaType selects the movie or TV endpoint family.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Details represents TMDB movie or TV metadata.
type Details struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"` // movies
	Name       string `json:"name"`  // tv
	PosterPath string `json:"poster_path"`
}

// Credits represents the crew listing for a movie or TV show.
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Director returns the first crew member credited as Director, or "".
func (c *Credits) Director() string {
	for _, m := range c.Crew {
		if m.Job == "Director" {
			return m.Name
		}
	}
	return ""
}

package board

import (
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Draft is the raw text of the node form. Year and Rating stay strings
// until Apply so an empty field can mean "keep what was there".
type Draft struct {
	Title     string `validate:"required"`
	Kind      Kind   `validate:"required,oneof=movie tv music book"`
	Year      string `validate:"omitempty,number"`
	Genres    string
	Rating    string `validate:"omitempty,numeric"`
	Poster    string
	Review    string
	Director  string
	Streaming string
}

// DraftOf fills a draft from an existing node, for editing.
func DraftOf(n *Node) Draft {
	d := Draft{
		Title:     n.Title,
		Kind:      n.Kind,
		Year:      strconv.Itoa(n.Year),
		Genres:    strings.Join(n.Genres, ", "),
		Poster:    n.Poster,
		Review:    n.Review,
		Director:  n.Director,
		Streaming: n.Streaming,
	}
	if n.Rating != nil {
		d.Rating = strconv.FormatFloat(*n.Rating, 'f', -1, 64)
	}
	return d
}

func (d Draft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Year = strings.TrimSpace(d.Year)
	d.Rating = strings.TrimSpace(d.Rating)
	if err := validate.Struct(d); err != nil {
		return formatValidationError(err)
	}
	return nil
}

var genreSep = regexp.MustCompile(`[,;|]`)

// ParseGenres splits on , ; or | and drops empty entries.
func ParseGenres(s string) []string {
	genres := []string{}
	for _, g := range genreSep.Split(s, -1) {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// NewNode builds a fresh note from the sidebar form. The year defaults to
// thisYear, the note gets a random tilt and lands near the origin.
func (d Draft) NewNode(thisYear int, rng *rand.Rand) Node {
	title := strings.TrimSpace(d.Title)
	year := thisYear
	if y, err := strconv.Atoi(strings.TrimSpace(d.Year)); err == nil {
		year = y
	}
	x, y := RandomSpot(rng)
	return Node{
		ID:     Slug(title),
		Title:  title,
		Kind:   d.Kind,
		Year:   year,
		Genres: ParseGenres(d.Genres),
		Angle:  Float(RandomAngle(rng)),
		X:      &x,
		Y:      &y,
	}
}

// MergeInto applies the sidebar fields to an existing note. When keepEmpty
// is set an empty genres field keeps the old genres (re-adding a title that
// already exists); otherwise it clears them (explicit edit).
func (d Draft) MergeInto(n Node, keepEmpty bool) Node {
	out := n.Clone()
	out.Title = strings.TrimSpace(d.Title)
	out.Kind = d.Kind
	if y, err := strconv.Atoi(strings.TrimSpace(d.Year)); err == nil {
		out.Year = y
	}
	switch {
	case strings.TrimSpace(d.Genres) != "":
		out.Genres = ParseGenres(d.Genres)
	case !keepEmpty:
		out.Genres = []string{}
	}
	return out
}

// ApplyDetails applies the full item form: every field is editable and an
// empty title keeps the old one.
func (d Draft) ApplyDetails(n Node) Node {
	out := d.MergeInto(n, false)
	if out.Title == "" {
		out.Title = n.Title
	}
	out.Poster = strings.TrimSpace(d.Poster)
	out.Review = d.Review
	out.Director = strings.TrimSpace(d.Director)
	out.Streaming = strings.TrimSpace(d.Streaming)
	out.Rating = nil
	if r, err := strconv.ParseFloat(strings.TrimSpace(d.Rating), 64); err == nil {
		out.Rating = &r
	}
	return out
}

var demoPosters = map[string]string{
	"inception":    "https://image.tmdb.org/t/p/w200/qmDpIHrmpJINaRKAfWQfftjCdyi.jpg",
	"interstellar": "https://image.tmdb.org/t/p/w200/rAiYTfKGqDCRIIqo664sY9XZIvQ.jpg",
	"dark":         "https://image.tmdb.org/t/p/w200/apbrbWs8M9lyOpJYU5WXrpFbk1Z.jpg",
	"got":          "https://image.tmdb.org/t/p/w200/u3bZgnGQ9T01sWNhyveQz0wH0Hl.jpg",
	"arrival":      "https://image.tmdb.org/t/p/w200/x2FJsf1ElAgr63Y3PNPtJrcmpoe.jpg",
}

// PosterOf returns the node's poster, or a known demo poster, or a
// placeholder image carrying the title.
func PosterOf(n *Node) string {
	if n.Poster != "" {
		return n.Poster
	}
	if p, ok := demoPosters[n.ID]; ok {
		return p
	}
	title := n.Title
	if title == "" {
		title = "Poster"
	}
	return "https://placehold.co/400x600?text=" + url.QueryEscape(title)
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var msgs []string
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "number", "numeric":
			msgs = append(msgs, fmt.Sprintf("%s must be a number", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

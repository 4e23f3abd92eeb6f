package board

import (
	"math"
	"math/rand"
	"regexp"
	"strings"
)

// Board dimensions of the initial viewport, in world units.
const (
	BoardW = 1100
	BoardH = 720
)

// LayoutEvenGrid places every node on an evenly spaced grid centered on
// the world origin.
func LayoutEvenGrid(nodes []*Node) {
	n := len(nodes)
	if n == 0 {
		return
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))

	const marginX, marginY = 140.0, 120.0
	left, right := -BoardW/2+marginX, BoardW/2-marginX
	top, bottom := -BoardH/2+marginY, BoardH/2-marginY

	var xStep, yStep float64
	if cols > 1 {
		xStep = (right - left) / float64(cols-1)
	}
	if rows > 1 {
		yStep = (bottom - top) / float64(rows-1)
	}
	for i, node := range nodes {
		r, c := i/cols, i%cols
		x := left + float64(c)*xStep
		y := top + float64(r)*yStep
		node.X, node.Y = &x, &y
	}
}

// RandomAngle returns a tilt in [-4, 4] degrees with one decimal.
func RandomAngle(rng *rand.Rand) float64 {
	return math.Round((rng.Float64()*8-4)*10) / 10
}

// RandomSpot is where a freshly added note lands before it is dragged.
func RandomSpot(rng *rand.Rand) (x, y float64) {
	return (rng.Float64() - 0.5) * 200, (rng.Float64() - 0.5) * 120
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a node ID from its title.
func Slug(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// Demo is the five-note starter board.
func Demo() *Document {
	nodes := []*Node{
		{ID: "inception", Title: "Inception", Kind: KindMovie, Year: 2010, Genres: []string{"Sci-fi", "Heist"}, Rating: Float(9), Angle: Float(-3),
			Poster: "https://image.tmdb.org/t/p/w200/qmDpIHrmpJINaRKAfWQfftjCdyi.jpg", Review: "Dream layers done right."},
		{ID: "interstellar", Title: "Interstellar", Kind: KindMovie, Year: 2014, Genres: []string{"Sci-fi", "Drama"}, Rating: Float(9), Angle: Float(2),
			Poster: "https://image.tmdb.org/t/p/w200/rAiYTfKGqDCRIIqo664sY9XZIvQ.jpg"},
		{ID: "dark", Title: "Dark", Kind: KindTV, Year: 2017, Genres: []string{"Sci-fi", "Thriller"}, Rating: Float(8.8), Angle: Float(-5),
			Poster: "https://image.tmdb.org/t/p/w200/apbrbWs8M9lyOpJYU5WXrpFbk1Z.jpg"},
		{ID: "got", Title: "Game of Thrones", Kind: KindTV, Year: 2011, Genres: []string{"Fantasy", "Drama"}, Rating: Float(8.5), Angle: Float(4),
			Poster: "https://image.tmdb.org/t/p/w200/u3bZgnGQ9T01sWNhyveQz0wH0Hl.jpg"},
		{ID: "arrival", Title: "Arrival", Kind: KindMovie, Year: 2016, Genres: []string{"Sci-fi", "Drama"}, Rating: Float(8), Angle: Float(1),
			Poster: "https://image.tmdb.org/t/p/w200/x2FJsf1ElAgr63Y3PNPtJrcmpoe.jpg"},
	}
	LayoutEvenGrid(nodes)
	return &Document{
		Nodes: nodes,
		Links: []Link{
			{Source: Ref("inception"), Target: Ref("interstellar"), Reason: "Nolan mind-benders", Strength: DefaultStrength},
			{Source: Ref("interstellar"), Target: Ref("arrival"), Reason: "Thoughtful sci-fi", Strength: DefaultStrength},
			{Source: Ref("dark"), Target: Ref("got"), Reason: "Epic & twisty", Strength: DefaultStrength},
			{Source: Ref("inception"), Target: Ref("dark"), Reason: "Time & mystery", Strength: DefaultStrength},
		},
	}
}

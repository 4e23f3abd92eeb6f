package board

import "strings"

// AutoConnect appends a link for every pair of nodes that share at least
// one genre. The reason is the first two shared genres joined by "/".
//
// Existing links are not consulted: running it twice on the same document
// appends the same links again.
func AutoConnect(d *Document) []Link {
	var added []Link
	for i := 0; i < len(d.Nodes); i++ {
		for j := i + 1; j < len(d.Nodes); j++ {
			a, b := d.Nodes[i], d.Nodes[j]
			shared := sharedGenres(a.Genres, b.Genres)
			if len(shared) == 0 {
				continue
			}
			if len(shared) > 2 {
				shared = shared[:2]
			}
			added = append(added, Link{
				Source:   Ref(a.ID),
				Target:   Ref(b.ID),
				Reason:   strings.Join(shared, "/"),
				Strength: DefaultStrength,
			})
		}
	}
	d.Links = append(d.Links, added...)
	return added
}

// sharedGenres keeps a's order, and a's repeats.
func sharedGenres(a, b []string) []string {
	var out []string
	for _, g := range a {
		for _, h := range b {
			if g == h {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

package main

import (
	"net/http"
	"sort"
)

type authorStat struct {
	AuthorID       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	Posts          int    `json:"posts"`
	LastPosted     string `json:"lastPosted"`
}

// authorStats counts posts per author, most active first. Ties keep the
// order in which authors first posted.
func authorStats(posts []Post) []authorStat {
	idx := map[string]int{}
	out := make([]authorStat, 0)
	for _, p := range posts {
		i, ok := idx[p.AuthorID]
		if !ok {
			i = len(out)
			idx[p.AuthorID] = i
			out = append(out, authorStat{AuthorID: p.AuthorID, AuthorUsername: p.AuthorUsername})
		}
		out[i].Posts++
		out[i].LastPosted = formatDate(p.DatePosted)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Posts > out[b].Posts })
	return out
}

// GET /api/stats
func (s *server) handleAuthorStats(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": authorStats(posts)})
}

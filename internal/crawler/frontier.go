package crawler

import (
	"net/url"
	"strings"
)

// frontier is the FIFO queue of URLs awaiting a visit plus the set of
// URLs already visited. It belongs to a single crawl and is not safe for
// concurrent use.
type frontier struct {
	queue   []string
	queued  map[string]bool
	visited map[string]bool
}

// newFrontier returns a frontier holding only start.
func newFrontier(start string) *frontier {
	f := &frontier{
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
	}
	f.push(start)
	return f
}

// push appends u unless it was already visited or queued.
// It reports whether u was added.
func (f *frontier) push(u string) bool {
	key := normalizeURL(u)
	if f.visited[key] || f.queued[key] {
		return false
	}
	f.queued[key] = true
	f.queue = append(f.queue, u)
	return true
}

// pop removes and returns the head of the queue.
func (f *frontier) pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, normalizeURL(u))
	return u, true
}

// isVisited reports whether u was already visited.
func (f *frontier) isVisited(u string) bool {
	return f.visited[normalizeURL(u)]
}

// markVisited records u as visited.
func (f *frontier) markVisited(u string) {
	f.visited[normalizeURL(u)] = true
}

// visitedCount returns the number of distinct URLs visited.
func (f *frontier) visitedCount() int {
	return len(f.visited)
}

// empty reports whether no URL is waiting.
func (f *frontier) empty() bool {
	return len(f.queue) == 0
}

// normalizeURL normalizes a URL for deduplication: the fragment is
// dropped, scheme and host are lowercased and an empty path becomes "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

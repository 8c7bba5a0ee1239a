// Package catalog holds the premium content sold behind the paywall.
package catalog

import "sort"

type Article struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url"`
	Author  string `json:"author"`
}

type Podcast struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type Video struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type Kind string

const (
	KindArticle Kind = "article"
	KindPodcast Kind = "podcast"
	KindVideo   Kind = "video"
	KindMusic   Kind = "music"
)

// Item is a single premium page.
type Item struct {
	Path     string   `json:"path"`
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Length   string   `json:"length,omitempty"`
	Summary  string   `json:"summary"`
	Sections []string `json:"sections,omitempty"`
}

var articles = []Article{
	{ID: 1, Title: "The Future of Web3 Payments", Excerpt: "Exploring the next generation of payment systems in Web3...", URL: "/articles/web3-future", Author: "Tech Writer"},
	{ID: 2, Title: "Building in the Creator Economy", Excerpt: "How creators are leveraging blockchain technology...", URL: "/articles/creator-economy", Author: "Industry Expert"},
	{ID: 3, Title: "Decentralized Content Distribution", Excerpt: "The impact of decentralization on content platforms...", URL: "/articles/decentralized-content", Author: "Content Analyst"},
}

var podcasts = []Podcast{
	{ID: 1, Title: "Web3 Insights Episode 1", Duration: "45:00", URL: "/podcasts/web3-insights", Description: "Deep dive into Web3 technologies"},
	{ID: 2, Title: "Creator Economy Trends", Duration: "38:20", URL: "/podcasts/creator-trends", Description: "Exploring the modern creator economy"},
}

var videos = []Video{
	{ID: 1, Title: "Blockchain Basics - A Complete Guide", Duration: "15:30", URL: "/videos/blockchain-basics", Thumbnail: "/thumbnails/blockchain.jpg"},
	{ID: 2, Title: "Introduction to Web3", Duration: "12:45", URL: "/videos/web3-intro", Thumbnail: "/thumbnails/web3.jpg"},
}

var items = map[string]Item{
	"/articles/web3-future": {
		Path:    "/articles/web3-future",
		Kind:    KindArticle,
		Title:   "The Future of Web3 Payments",
		Author:  "John Doe",
		Length:  "5 min read",
		Summary: "Exploring how X402 protocol is revolutionizing content monetization",
		Sections: []string{
			"What is X402?",
			"Key Benefits for Creators",
		},
	},
	"/articles/creator-economy": {
		Path:    "/articles/creator-economy",
		Kind:    KindArticle,
		Title:   "Building in the Creator Economy",
		Author:  "Jane Smith",
		Length:  "8 min read",
		Summary: "How creators are leveraging blockchain technology",
	},
	"/articles/decentralized-content": {
		Path:    "/articles/decentralized-content",
		Kind:    KindArticle,
		Title:   "Decentralized Content Distribution",
		Author:  "Alex Johnson",
		Length:  "6 min read",
		Summary: "The impact of decentralization on content platforms",
	},
	"/podcasts/web3-insights": {
		Path:    "/podcasts/web3-insights",
		Kind:    KindPodcast,
		Title:   "Web3 Insights Episode 1",
		Author:  "Sarah Williams",
		Length:  "45:00",
		Summary: "Deep dive into Web3 technologies",
	},
	"/videos/blockchain-basics": {
		Path:    "/videos/blockchain-basics",
		Kind:    KindVideo,
		Title:   "Blockchain Basics - A Complete Guide",
		Author:  "Tom Anderson",
		Length:  "15:30",
		Summary: "Everything you need to get started with blockchains",
	},
	"/protected": {
		Path:    "/protected",
		Kind:    KindMusic,
		Title:   "x402 Remix",
		Summary: "Premium music unlocked with a single micropayment",
	},
}

// Articles returns a copy, callers may modify it.
func Articles() []Article {
	return append([]Article(nil), articles...)
}

func Podcasts() []Podcast {
	return append([]Podcast(nil), podcasts...)
}

func Videos() []Video {
	return append([]Video(nil), videos...)
}

func Lookup(path string) (Item, bool) {
	it, ok := items[path]
	if ok {
		it.Sections = append([]string(nil), it.Sections...)
	}

	return it, ok
}

// ItemPaths lists the paths of all premium items in lexical order.
func ItemPaths() []string {
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths
}

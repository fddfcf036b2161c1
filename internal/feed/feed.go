// Package feed reads social posts from RSS/Atom feeds and hands them to the
// analysis session.
package feed

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const defaultMaxPosts = 20

// Post is a single feed item reduced to plain text.
type Post struct {
	URL       string
	Title     string
	Author    string
	Published string // YYYY-MM-DD or empty
	Text      string
}

// Name is the label a post is recorded under in history.
func (p Post) Name() string {
	if p.Title != "" {
		return p.Title
	}
	return p.URL
}

// Options control how a feed is read.
type Options struct {
	MaxPosts      int
	Full          bool
	MinPostLength int
	FetchTimeout  time.Duration
}

// Reader parses feeds into posts.
type Reader struct {
	opts   Options
	parser *gofeed.Parser
	client *http.Client
}

// NewReader creates a feed reader.
func NewReader(opts Options) *Reader {
	if opts.MaxPosts <= 0 {
		opts.MaxPosts = defaultMaxPosts
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}

	client := &http.Client{
		Timeout: opts.FetchTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "ContentAnalyzer/1.0"

	return &Reader{opts: opts, parser: parser, client: client}
}

// Read fetches feedURL and returns at most MaxPosts posts with text. With
// Full set, teasers shorter than MinPostLength are replaced by the readable
// text of the linked page when that is longer.
func (r *Reader) Read(ctx context.Context, feedURL string) ([]Post, error) {
	f, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	var posts []Post
	for _, item := range f.Items {
		if len(posts) >= r.opts.MaxPosts {
			break
		}

		post := parseItem(item)
		if post == nil {
			continue
		}
		if r.opts.Full && post.URL != "" && len([]rune(post.Text)) < r.opts.MinPostLength {
			full, err := r.fetchFullText(ctx, post.URL)
			if err != nil {
				log.Printf("Full text unavailable for %s: %v", post.URL, err)
			} else if len(full) > len(post.Text) {
				post.Text = full
			}
		}
		if post.Text == "" {
			continue
		}
		posts = append(posts, *post)
	}

	log.Printf("Parsed %d posts from %s", len(posts), feedURL)
	return posts, nil
}

func parseItem(item *gofeed.Item) *Post {
	link := item.Link
	if link == "" {
		link = item.GUID
	}

	var published string
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.Format("2006-01-02")
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	}

	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	title := strings.TrimSpace(item.Title)
	if link == "" && title == "" {
		return nil
	}

	return &Post{
		URL:       link,
		Title:     title,
		Author:    author,
		Published: published,
		Text:      HTMLToText(raw),
	}
}

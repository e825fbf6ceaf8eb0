package models

import (
	"html/template"
	"strconv"
	"time"
)

// Post is a blog entry as persisted in the store. The ID is the store key and
// is not part of the stored JSON value.
type Post struct {
	ID    string `json:"-"`
	Title string `json:"title,omitempty"`
	Short string `json:"short"`
	Long  string `json:"long,omitempty"`
}

// DisplayTitle returns the title, or the id for untitled posts.
func (p Post) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// Body returns the markdown shown on the post page.
func (p Post) Body() string {
	if p.Long != "" {
		return p.Long
	}
	return p.Short
}

// URL is the path the post is served under.
func (p Post) URL() string {
	return "/" + p.ID
}

// CreatedAt derives the creation time from the timestamp id. It returns the
// zero time for ids that are not millisecond timestamps.
func (p Post) CreatedAt() time.Time {
	ms, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// PostView is the display record handed to templates.
type PostView struct {
	ID      string
	URL     string
	Title   string
	Content template.HTML
	Date    time.Time
}

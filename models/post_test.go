package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostFallbacks(t *testing.T) {
	p := Post{ID: "1700000000000", Short: "summary"}
	assert.Equal(t, "1700000000000", p.DisplayTitle())
	assert.Equal(t, "summary", p.Body())
	assert.Equal(t, "/1700000000000", p.URL())

	p.Title = "Hello"
	p.Long = "body"
	assert.Equal(t, "Hello", p.DisplayTitle())
	assert.Equal(t, "body", p.Body())
}

func TestPostCreatedAt(t *testing.T) {
	p := Post{ID: "1700000000000"}
	assert.True(t, p.CreatedAt().Equal(time.UnixMilli(1700000000000)))
	assert.True(t, Post{ID: "hello"}.CreatedAt().IsZero())
}

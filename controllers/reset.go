package controllers

import (
	"context"

	"github.com/cppla/mdblog/utils"
)

// Resetter wipes a store.
type Resetter interface {
	Reset() (int, error)
}

// ResetContent deletes every post and drops every cached page.
func ResetContent(ctx context.Context, store Resetter, cache *utils.PageCache) error {
	n, err := store.Reset()
	if err != nil {
		return err
	}
	cache.Flush(ctx)
	utils.Sugar.Infow("reset content database", "deleted", n)
	return nil
}

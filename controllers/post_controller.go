package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/mdblog/middleware"
	"github.com/cppla/mdblog/models"
	"github.com/cppla/mdblog/storage"
	"github.com/cppla/mdblog/utils"
	"github.com/cppla/mdblog/views"
)

// PostStore is the part of the store the post routes need.
type PostStore interface {
	Get(id string) (models.Post, error)
	Insert(post models.Post) error
	ForEach(ctx context.Context, fn func(models.Post) error) error
}

// PostController serves the listing, single post and creation pages.
type PostController struct {
	store     PostStore
	ids       *utils.IDGenerator
	markdown  utils.MarkdownRenderer
	views     *views.Renderer
	cache     *utils.PageCache
	siteTitle string
}

// NewPostController creates a new PostController instance. cache may be nil.
func NewPostController(store PostStore, ids *utils.IDGenerator, markdown utils.MarkdownRenderer, renderer *views.Renderer, cache *utils.PageCache, siteTitle string) *PostController {
	return &PostController{
		store:     store,
		ids:       ids,
		markdown:  markdown,
		views:     renderer,
		cache:     cache,
		siteTitle: siteTitle,
	}
}

// ListPosts renders every post's summary, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	if page, ok := p.cache.Get(ctx.Request.Context(), utils.IndexKey()); ok {
		middleware.PageCacheHits.WithLabelValues("index").Inc()
		utils.HTML(ctx, http.StatusOK, page)
		return
	}

	// Read before the scan: a post created meanwhile bumps it and the
	// page below is not cached.
	gen := p.cache.IndexGeneration(ctx.Request.Context())
	posts := make([]models.PostView, 0)
	err := p.store.ForEach(ctx.Request.Context(), func(post models.Post) error {
		posts = append(posts, p.view(post, post.Short))
		return nil
	})
	if err != nil {
		p.fail(ctx, http.StatusInternalServerError, "list posts", err)
		return
	}

	page, ok := p.render(ctx, views.Index, views.PageData{Posts: posts})
	if !ok {
		return
	}
	p.cache.SetIndex(ctx.Request.Context(), page, gen)
	utils.HTML(ctx, http.StatusOK, page)
}

// GetPost renders a single post. Missing and reserved ids are 404s.
func (p *PostController) GetPost(ctx *gin.Context) {
	id := ctx.Param("id")

	if page, ok := p.cache.Get(ctx.Request.Context(), utils.PostKey(id)); ok {
		middleware.PageCacheHits.WithLabelValues("post").Inc()
		utils.HTML(ctx, http.StatusOK, page)
		return
	}

	post, err := p.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			p.NotFound(ctx)
			return
		}
		p.fail(ctx, http.StatusInternalServerError, "load post", err)
		return
	}

	v := p.view(post, post.Body())
	page, ok := p.render(ctx, views.Post, views.PageData{Title: v.Title, Post: v})
	if !ok {
		return
	}
	p.cache.Set(ctx.Request.Context(), utils.PostKey(id), page)
	utils.HTML(ctx, http.StatusOK, page)
}

// NewPostForm renders the empty creation form.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	page, ok := p.render(ctx, views.Create, views.PageData{Title: "New post"})
	if !ok {
		return
	}
	utils.HTML(ctx, http.StatusOK, page)
}

// CreatePost stores the submitted form as a new post and redirects to it.
// Field contents are stored verbatim.
func (p *PostController) CreatePost(ctx *gin.Context) {
	short, ok := ctx.GetPostForm("short")
	if !ok {
		// Older form posted a single content field.
		short = ctx.PostForm("content")
	}
	post := models.Post{
		ID:    p.ids.Next(),
		Title: ctx.PostForm("title"),
		Short: short,
		Long:  ctx.PostForm("long"),
	}

	if err := p.store.Insert(post); err != nil {
		p.fail(ctx, http.StatusInternalServerError, "create post", err)
		return
	}
	middleware.PostsCreated.Inc()
	p.cache.InvalidateIndex(ctx.Request.Context())

	utils.Sugar.Infow("created post", "id", post.ID, "request_id", middleware.GetRequestID(ctx))
	ctx.Redirect(http.StatusSeeOther, post.URL())
}

func (p *PostController) view(post models.Post, markdown string) models.PostView {
	return models.PostView{
		ID:      post.ID,
		URL:     post.URL(),
		Title:   post.DisplayTitle(),
		Content: utils.RenderSafe(p.markdown, post.ID, markdown),
		Date:    post.CreatedAt(),
	}
}

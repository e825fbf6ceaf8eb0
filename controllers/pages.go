package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/mdblog/middleware"
	"github.com/cppla/mdblog/utils"
	"github.com/cppla/mdblog/views"
)

// NotFound renders the not-found page with a 404.
func (p *PostController) NotFound(ctx *gin.Context) {
	page, ok := p.render(ctx, views.NotFound, views.PageData{Title: "Not found"})
	if !ok {
		return
	}
	utils.HTML(ctx, http.StatusNotFound, page)
}

// TooManyRequests is the rate limiter's rejection page.
func (p *PostController) TooManyRequests(ctx *gin.Context) {
	utils.Sugar.Warnw("rate limit exceeded", "ip", ctx.ClientIP(), "path", ctx.Request.URL.Path)
	p.errorPage(ctx, http.StatusTooManyRequests)
}

// Recover renders the error page for a panic caught by the recovery middleware.
func (p *PostController) Recover(ctx *gin.Context, recovered any) {
	p.fail(ctx, http.StatusInternalServerError, "panic", fmt.Errorf("%v", recovered))
}

// fail logs err with the operation name and answers with a generic error
// page. The error text never reaches the client.
func (p *PostController) fail(ctx *gin.Context, status int, op string, err error) {
	utils.Sugar.Errorw(op+" failed",
		"err", err,
		"status", status,
		"path", ctx.Request.URL.Path,
		"request_id", middleware.GetRequestID(ctx),
	)
	p.errorPage(ctx, status)
}

func (p *PostController) errorPage(ctx *gin.Context, status int) {
	page, err := p.views.Render(views.Error, p.data(ctx, views.PageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: http.StatusText(status),
	}))
	if err != nil {
		utils.Sugar.Errorw("render error page failed", "err", err)
		ctx.String(status, http.StatusText(status))
		return
	}
	utils.HTML(ctx, status, page)
}

// render executes a page template, answering with the error page itself when
// that fails.
func (p *PostController) render(ctx *gin.Context, name string, data views.PageData) ([]byte, bool) {
	page, err := p.views.Render(name, p.data(ctx, data))
	if err != nil {
		p.fail(ctx, http.StatusInternalServerError, "render "+name, err)
		return nil, false
	}
	return page, true
}

func (p *PostController) data(ctx *gin.Context, d views.PageData) views.PageData {
	d.SiteTitle = p.siteTitle
	d.RequestID = middleware.GetRequestID(ctx)
	return d
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/slug"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	"github.com/aceconsult/cmsapi/internal/core/variant"
	"github.com/aceconsult/cmsapi/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Public Article Handlers
// =============================================================================

func (h *Handler) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePage(r, 10, 50)

	filter := store.ArticleFilter{
		PublishedOnly: true,
		Tag:           strings.TrimSpace(q.Get("tag")),
		Search:        strings.TrimSpace(q.Get("search")),
	}

	articles, total, err := h.store.ListArticles(r.Context(), filter, page.options())
	if err != nil {
		h.writeFailure(w, err, "article", "list articles")
		return
	}
	h.writeList(w, articles, total, page)
}

func (h *Handler) handleGetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.store.GetArticleBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeFailure(w, err, "article", "get article")
		return
	}
	if !article.IsPublished() {
		h.writeError(w, http.StatusNotFound, "article not found", "article_not_found")
		return
	}

	h.recordView(r, "article", article.ID)
	h.writeData(w, http.StatusOK, article, "")
}

// =============================================================================
// Admin Article Handlers
// =============================================================================

func (h *Handler) articleSlugs() slug.LookupFunc {
	return slugLookup(h.store.GetArticleBySlug, func(a *domain.Article) string { return a.ID })
}

var errForeignFeaturedImage = errors.New("featuredImage can only be set by uploading to the featured-image endpoint")

// resolveFeaturedImage returns the featured image an article keeps after
// req. The article owns the files behind its featured image, so a request
// may keep or clear the current one but never point at another stored file.
func resolveFeaturedImage(req *ArticleRequest, current string) (string, error) {
	if req.FeaturedImage == nil {
		return current, nil
	}
	v := strings.TrimSpace(*req.FeaturedImage)
	if v != "" && v != current {
		return "", errForeignFeaturedImage
	}
	return v, nil
}

// validateArticle checks the required fields and that the title yields a slug.
func validateArticle(req *ArticleRequest) error {
	if field, msg := validation.ValidateArticleFields(req.Title, req.Content); field != "" {
		return errors.New(msg)
	}
	if domain.Slugify(req.Title) == "" {
		return domain.ErrEmptySlug
	}
	return nil
}

// applyArticle copies the request onto a. The slug and featured image are
// handled by the caller.
func applyArticle(req *ArticleRequest, a *domain.Article) {
	a.Title = strings.TrimSpace(req.Title)
	a.Excerpt = req.Excerpt
	a.Content = req.Content
	a.AuthorID = strings.TrimSpace(req.AuthorID)
	a.Tags = nonEmpty(req.Tags)
	a.SeoTitle = req.SeoTitle
	a.SeoDescription = req.SeoDescription
	a.PublishedAt = nil
	if req.PublishedAt != nil {
		t := req.PublishedAt.UTC()
		a.PublishedAt = &t
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (h *Handler) handleListAllArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePage(r, 20, 100)

	filter := store.ArticleFilter{
		Tag:    strings.TrimSpace(q.Get("tag")),
		Search: strings.TrimSpace(q.Get("search")),
	}

	articles, total, err := h.store.ListArticles(r.Context(), filter, page.options())
	if err != nil {
		h.writeFailure(w, err, "article", "list articles")
		return
	}
	h.writeList(w, articles, total, page)
}

func (h *Handler) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.store.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "article", "get article")
		return
	}
	h.writeData(w, http.StatusOK, article, "")
}

func (h *Handler) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}
	if err := validateArticle(&req); err != nil {
		h.writeValidation(w, err.Error())
		return
	}
	if _, err := resolveFeaturedImage(&req, ""); err != nil {
		h.writeValidation(w, err.Error())
		return
	}

	ctx := r.Context()
	article := domain.NewArticle(req.Title, req.Content, h.now().UTC())
	applyArticle(&req, article)

	err := writeWithSlug(ctx, h.articleSlugs(), article.Title, "", false,
		func(s string) { article.Slug = s },
		func(ctx context.Context) error { return h.store.CreateArticle(ctx, article) })
	if err != nil {
		h.writeArticleWriteFailure(w, err, "create article")
		return
	}
	h.logger.Info("article created", "article_id", article.ID, "slug", article.Slug)

	h.writeData(w, http.StatusCreated, h.reloadArticle(r, article), "Article created successfully")
}

func (h *Handler) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	existing, err := h.store.GetArticle(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "article", "get article")
		return
	}

	var req ArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}
	if err := validateArticle(&req); err != nil {
		h.writeValidation(w, err.Error())
		return
	}
	featured, err := resolveFeaturedImage(&req, existing.FeaturedImage)
	if err != nil {
		h.writeValidation(w, err.Error())
		return
	}

	updated := *existing
	applyArticle(&req, &updated)
	updated.FeaturedImage = featured
	updated.Author = nil
	updated.UpdatedAt = h.now().UTC()

	err = writeWithSlug(ctx, h.articleSlugs(), updated.Title, updated.ID, updated.Title == existing.Title,
		func(s string) { updated.Slug = s },
		func(ctx context.Context) error { return h.store.UpdateArticle(ctx, &updated) })
	if err != nil {
		h.writeArticleWriteFailure(w, err, "update article")
		return
	}

	if existing.FeaturedImage != "" && existing.FeaturedImage != updated.FeaturedImage {
		h.cleanup(ctx, existing.FeaturedImage)
	}
	h.writeData(w, http.StatusOK, h.reloadArticle(r, &updated), "Article updated successfully")
}

func (h *Handler) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	article, err := h.store.GetArticle(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "article", "get article")
		return
	}

	if err := h.store.DeleteArticle(ctx, article.ID); err != nil {
		h.writeFailure(w, err, "article", "delete article")
		return
	}

	if article.FeaturedImage != "" {
		h.cleanup(ctx, article.FeaturedImage)
	}
	h.writeMessage(w, "Article deleted successfully")
}

func (h *Handler) handleUploadFeaturedImage(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	ctx := r.Context()
	article, err := h.store.GetArticle(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "article", "get article")
		return
	}

	files, err := h.files(r, "image")
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	if len(files) == 0 {
		h.writeValidation(w, "image file is required")
		return
	}

	batch := h.newImageBatch()
	res, err := batch.process(ctx, files[0], variant.Featured)
	if err != nil {
		h.writeFailure(w, err, "article", "store featured image")
		return
	}

	previous := article.FeaturedImage
	article.FeaturedImage = res.Original()
	article.UpdatedAt = h.now().UTC()
	if err := h.store.UpdateArticle(ctx, article); err != nil {
		batch.discard(ctx)
		h.writeFailure(w, err, "article", "update article")
		return
	}

	if previous != "" && previous != article.FeaturedImage {
		h.cleanup(ctx, previous)
	}
	h.writeData(w, http.StatusOK, UploadResponse{
		URL:      res.Original(),
		Variants: res.Variants,
		Fallback: res.Fallback,
	}, "Featured image uploaded successfully")
}

// reloadArticle returns the stored form of a, with the author filled in.
func (h *Handler) reloadArticle(r *http.Request, a *domain.Article) *domain.Article {
	stored, err := h.store.GetArticle(r.Context(), a.ID)
	if err != nil {
		h.logger.Warn("failed to reload article", "article_id", a.ID, "error", err)
		return a
	}
	return stored
}

func (h *Handler) writeArticleWriteFailure(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, store.ErrForeignKey) {
		h.writeError(w, http.StatusBadRequest, "author does not exist", "invalid_reference")
		return
	}
	h.writeFailure(w, err, "article", action)
}

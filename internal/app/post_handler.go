package app

import (
	"net/http"
	"strconv"

	"buildhub/internal/repository"
	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

const defaultPopularLimit = 5

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// ListPosts handles the public blog index
// GET /api/v1/posts?category=&tag=&limit=&offset=
func (h *PostHandler) ListPosts(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	posts, total, err := h.postService.ListPublished(repository.PostFilter{
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved successfully", gin.H{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

// ListAllPosts includes drafts
// GET /api/v1/admin/posts?status=
func (h *PostHandler) ListAllPosts(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	posts, total, err := h.postService.ListAll(actorFrom(c), repository.PostFilter{
		Status:       c.Query("status"),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved successfully", gin.H{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

// GetPost handles getting a post by slug. Staff can also see drafts.
// GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetBySlug(actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post retrieved successfully", gin.H{"post": post})
}

// PopularPosts
// GET /api/v1/posts/popular?limit=
func (h *PostHandler) PopularPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPopularLimit)))
	if err != nil || limit < 1 || limit > util.MaxLimit {
		limit = defaultPopularLimit
	}

	posts, err := h.postService.Popular(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Popular posts retrieved successfully", gin.H{"posts": posts})
}

// CreatePost
// POST /api/v1/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req service.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.CreatePost(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Post created successfully", gin.H{"post": post})
}

// UpdatePost
// PUT /api/v1/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req service.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.UpdatePost(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post updated successfully", gin.H{"post": post})
}

// DeletePost
// DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post deleted successfully", nil)
}

// PublishPost
// POST /api/v1/posts/:id/publish
func (h *PostHandler) PublishPost(c *gin.Context) {
	h.setPublished(c, true, "Post published successfully")
}

// UnpublishPost moves a post back to draft
// POST /api/v1/posts/:id/unpublish
func (h *PostHandler) UnpublishPost(c *gin.Context) {
	h.setPublished(c, false, "Post unpublished successfully")
}

func (h *PostHandler) setPublished(c *gin.Context, publish bool, message string) {
	post, err := h.postService.SetPublished(actorFrom(c), c.Param("id"), publish)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, message, gin.H{"post": post})
}

// UploadCover takes a multipart "image" field
// POST /api/v1/posts/:id/cover
func (h *PostHandler) UploadCover(c *gin.Context) {
	file, ok := formImage(c, "image")
	if !ok {
		return
	}

	post, err := h.postService.UploadCover(c.Request.Context(), actorFrom(c), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Cover image uploaded successfully", gin.H{"post": post})
}

// GET /api/v1/categories
func (h *PostHandler) ListCategories(c *gin.Context) {
	categories, err := h.postService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", gin.H{"categories": categories})
}

// POST /api/v1/categories
func (h *PostHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.postService.CreateCategory(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Category created successfully", gin.H{"category": category})
}

// GET /api/v1/tags
func (h *PostHandler) ListTags(c *gin.Context) {
	tags, err := h.postService.ListTags()
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Tags retrieved successfully", gin.H{"tags": tags})
}

// POST /api/v1/tags
func (h *PostHandler) CreateTag(c *gin.Context) {
	var req service.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.postService.CreateTag(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Tag created successfully", gin.H{"tag": tag})
}

// formImage reads one uploaded image from a multipart field
func formImage(c *gin.Context, field string) (*util.FileData, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		util.BadRequest(c, "Image file is required in field '"+field+"'")
		return nil, false
	}
	if header.Size > util.MaxImageSize {
		util.BadRequest(c, "Image exceeds the 10MB limit")
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		util.BadRequest(c, "Failed to read uploaded file")
		return nil, false
	}
	defer f.Close()

	file, err := util.ReadImage(f, header.Filename)
	if err != nil {
		util.BadRequest(c, err.Error())
		return nil, false
	}
	return file, true
}

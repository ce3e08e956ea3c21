package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildhub/internal/model"
	"buildhub/internal/repository"
	"buildhub/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostService interface {
	CreatePost(actor Actor, req PostRequest) (*model.BlogPost, error)
	UpdatePost(actor Actor, id string, req PostRequest) (*model.BlogPost, error)
	DeletePost(actor Actor, id string) error
	SetPublished(actor Actor, id string, publish bool) (*model.BlogPost, error)
	UploadCover(ctx context.Context, actor Actor, id string, file *util.FileData) (*model.BlogPost, error)
	GetBySlug(actor Actor, slug string) (*model.BlogPost, error)
	ListPublished(filter repository.PostFilter) ([]model.BlogPost, int64, error)
	ListAll(actor Actor, filter repository.PostFilter) ([]model.BlogPost, int64, error)
	Popular(limit int) ([]model.BlogPost, error)

	CreateCategory(actor Actor, req CategoryRequest) (*model.Category, error)
	ListCategories() ([]model.Category, error)
	CreateTag(actor Actor, req TagRequest) (*model.Tag, error)
	ListTags() ([]model.Tag, error)
}

type PostRequest struct {
	Title           string   `json:"title" binding:"required,max=200"`
	Slug            string   `json:"slug" binding:"max=200"`
	Excerpt         string   `json:"excerpt" binding:"max=500"`
	Content         string   `json:"content" binding:"required"`
	MetaDescription string   `json:"meta_description" binding:"max=300"`
	CategoryID      *string  `json:"category_id"`
	TagIDs          []string `json:"tag_ids"`
	AllowComments   *bool    `json:"allow_comments"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type TagRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

type postService struct {
	postRepo     repository.PostRepository
	taxonomyRepo repository.TaxonomyRepository
	uploader     util.ImageUploader
}

// NewPostService wires the blog. uploader may be nil when Cloudinary is not configured.
func NewPostService(
	postRepo repository.PostRepository,
	taxonomyRepo repository.TaxonomyRepository,
	uploader util.ImageUploader,
) PostService {
	return &postService{
		postRepo:     postRepo,
		taxonomyRepo: taxonomyRepo,
		uploader:     uploader,
	}
}

func (s *postService) CreatePost(actor Actor, req PostRequest) (*model.BlogPost, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	post := &model.BlogPost{
		AuthorID:      actor.UserID,
		Status:        model.PostStatusDraft,
		AllowComments: true,
	}
	tags, err := s.apply(post, req)
	if err != nil {
		return nil, err
	}

	source := req.Slug
	if source == "" {
		source = req.Title
	}
	post.Slug, err = uniqueSlug(source, func(slug string) (bool, error) {
		return s.postRepo.SlugExists(slug, "")
	})
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if len(tags) > 0 {
		if err := s.postRepo.ReplaceTags(post, tags); err != nil {
			return nil, err
		}
	}

	zap.L().Info("post created", zap.String("post_id", post.ID), zap.String("slug", post.Slug))
	return s.postRepo.FindByID(post.ID)
}

func (s *postService) UpdatePost(actor Actor, id string, req PostRequest) (*model.BlogPost, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	post, err := s.find(id)
	if err != nil {
		return nil, err
	}

	tags, err := s.apply(post, req)
	if err != nil {
		return nil, err
	}

	if req.Slug != "" && util.Slugify(req.Slug) != post.Slug {
		slug := util.Slugify(req.Slug)
		taken, err := s.postRepo.SlugExists(slug, post.ID)
		if err != nil {
			return nil, err
		}
		if taken || slug == "" {
			return nil, ErrDuplicateSlug
		}
		post.Slug = slug
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if err := s.postRepo.ReplaceTags(post, tags); err != nil {
		return nil, err
	}
	return s.postRepo.FindByID(post.ID)
}

// apply copies the editable fields from req and resolves the taxonomy
func (s *postService) apply(post *model.BlogPost, req PostRequest) ([]model.Tag, error) {
	post.Title = strings.TrimSpace(req.Title)
	post.Content = req.Content
	post.Excerpt = strings.TrimSpace(req.Excerpt)
	post.MetaDescription = strings.TrimSpace(req.MetaDescription)
	if req.AllowComments != nil {
		post.AllowComments = *req.AllowComments
	}

	post.CategoryID = nil
	post.Category = nil
	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.taxonomyRepo.FindCategoryByID(*req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		post.CategoryID = req.CategoryID
	}

	tags, err := s.taxonomyRepo.FindTagsByIDs(req.TagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(uniqueStrings(req.TagIDs)) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

func (s *postService) DeletePost(actor Actor, id string) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	post, err := s.find(id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(post); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	zap.L().Info("post deleted", zap.String("post_id", id), zap.String("by", actor.UserID))
	return nil
}

// SetPublished publishes or unpublishes a post. The first publication time
// is kept when a post is unpublished and published again.
func (s *postService) SetPublished(actor Actor, id string, publish bool) (*model.BlogPost, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	post, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if publish {
		post.Status = model.PostStatusPublished
		if post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	} else {
		post.Status = model.PostStatusDraft
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (s *postService) UploadCover(ctx context.Context, actor Actor, id string, file *util.FileData) (*model.BlogPost, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	post, err := s.find(id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadImage(ctx, file, "posts/"+post.ID)
	if err != nil {
		return nil, err
	}
	post.CoverImageURL = &url
	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// GetBySlug returns a published post and counts the view. Staff can also
// preview drafts; their visits are not counted.
func (s *postService) GetBySlug(actor Actor, slug string) (*model.BlogPost, error) {
	post, err := s.postRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if actor.IsStaff() {
		return post, nil
	}
	if !post.IsPublished() {
		return nil, ErrPostNotFound
	}

	if err := s.postRepo.IncrementViewCount(post.ID); err != nil {
		zap.L().Warn("failed to count post view", zap.String("post_id", post.ID), zap.Error(err))
	} else {
		post.ViewCount++
	}
	return post, nil
}

func (s *postService) ListPublished(filter repository.PostFilter) ([]model.BlogPost, int64, error) {
	return s.postRepo.ListPublished(filter)
}

func (s *postService) ListAll(actor Actor, filter repository.PostFilter) ([]model.BlogPost, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, ErrForbidden
	}
	return s.postRepo.List(filter)
}

func (s *postService) Popular(limit int) ([]model.BlogPost, error) {
	return s.postRepo.Popular(limit)
}

func (s *postService) CreateCategory(actor Actor, req CategoryRequest) (*model.Category, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	slug := util.Slugify(req.Name)
	taken, err := s.taxonomyRepo.CategorySlugExists(slug)
	if err != nil {
		return nil, err
	}
	if taken || slug == "" {
		return nil, ErrDuplicateSlug
	}

	category := &model.Category{Name: strings.TrimSpace(req.Name), Slug: slug, Description: req.Description}
	if err := s.taxonomyRepo.CreateCategory(category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *postService) ListCategories() ([]model.Category, error) {
	return s.taxonomyRepo.ListCategories()
}

func (s *postService) CreateTag(actor Actor, req TagRequest) (*model.Tag, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	slug := util.Slugify(req.Name)
	taken, err := s.taxonomyRepo.TagSlugExists(slug)
	if err != nil {
		return nil, err
	}
	if taken || slug == "" {
		return nil, ErrDuplicateSlug
	}

	tag := &model.Tag{Name: strings.TrimSpace(req.Name), Slug: slug}
	if err := s.taxonomyRepo.CreateTag(tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *postService) ListTags() ([]model.Tag, error) {
	return s.taxonomyRepo.ListTags()
}

func (s *postService) find(id string) (*model.BlogPost, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

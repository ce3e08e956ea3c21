package repository

import (
	"fmt"
	"time"

	"buildhub/internal/model"
	"buildhub/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows post listings. Empty fields are ignored.
type PostFilter struct {
	Status       string
	CategorySlug string
	TagSlug      string
	Limit        int
	Offset       int
}

type PostRepository interface {
	Create(post *model.BlogPost) error
	Update(post *model.BlogPost) error
	ReplaceTags(post *model.BlogPost, tags []model.Tag) error
	Delete(post *model.BlogPost) error
	FindByID(id string) (*model.BlogPost, error)
	FindBySlug(slug string) (*model.BlogPost, error)
	SlugExists(slug, excludeID string) (bool, error)
	ListPublished(filter PostFilter) ([]model.BlogPost, int64, error)
	List(filter PostFilter) ([]model.BlogPost, int64, error)
	IncrementViewCount(id string) error
	Popular(limit int) ([]model.BlogPost, error)
	Search(query string, limit int) ([]model.BlogPost, error)
	ListPublishedForSitemap() ([]model.BlogPost, error)
	CountByStatus() (map[string]int64, error)
}

type postRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	postBySlugCachePrefix = "post:slug:"
	postListCachePrefix   = "post:list:"
	postPopularKey        = "post:popular"
)

type cachedPostPage struct {
	Posts []model.BlogPost `json:"posts"`
	Total int64            `json:"total"`
}

func NewPostRepository(db *gorm.DB, redis *util.RedisClient) PostRepository {
	return &postRepository{db: db, redis: redis}
}

func (r *postRepository) Create(post *model.BlogPost) error {
	if err := r.db.Omit(clause.Associations).Create(post).Error; err != nil {
		return err
	}
	r.invalidateLists()
	return nil
}

func (r *postRepository) Update(post *model.BlogPost) error {
	if err := r.db.Omit(clause.Associations).Save(post).Error; err != nil {
		return err
	}
	// the slug may have changed, so drop every cached detail
	cacheDeletePattern(r.redis, postBySlugCachePrefix+"*")
	r.invalidateLists()
	return nil
}

func (r *postRepository) ReplaceTags(post *model.BlogPost, tags []model.Tag) error {
	if err := r.db.Model(post).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	post.Tags = tags
	r.invalidatePost(post.Slug)
	return nil
}

// Delete soft-deletes the post and drops it from the popularity ranking
func (r *postRepository) Delete(post *model.BlogPost) error {
	if err := r.db.Delete(post).Error; err != nil {
		return err
	}
	r.invalidatePost(post.Slug)
	if r.redis != nil {
		r.redis.ZRem(postPopularKey, post.ID)
	}
	return nil
}

func (r *postRepository) FindByID(id string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.preload(r.db).Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindBySlug(slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	if cacheGet(r.redis, postBySlugCachePrefix+slug, &post) {
		return &post, nil
	}

	if err := r.preload(r.db).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}

	cacheSet(r.redis, postBySlugCachePrefix+slug, &post)
	return &post, nil
}

func (r *postRepository) SlugExists(slug, excludeID string) (bool, error) {
	var count int64
	q := r.db.Unscoped().Model(&model.BlogPost{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPublished lists posts visible to the public, newest first
func (r *postRepository) ListPublished(filter PostFilter) ([]model.BlogPost, int64, error) {
	cacheKey := fmt.Sprintf("%s%s:%s:%d:%d", postListCachePrefix, filter.CategorySlug, filter.TagSlug, filter.Limit, filter.Offset)
	var page cachedPostPage
	if cacheGet(r.redis, cacheKey, &page) {
		return page.Posts, page.Total, nil
	}

	filter.Status = model.PostStatusPublished
	q := r.filtered(filter).Where("blog_posts.published_at <= ?", time.Now())

	posts, total, err := r.page(q, filter, "blog_posts.published_at DESC")
	if err != nil {
		return nil, 0, err
	}

	cacheSet(r.redis, cacheKey, cachedPostPage{Posts: posts, Total: total})
	return posts, total, nil
}

// List is the staff view: drafts included, no caching
func (r *postRepository) List(filter PostFilter) ([]model.BlogPost, int64, error) {
	return r.page(r.filtered(filter), filter, "blog_posts.updated_at DESC")
}

func (r *postRepository) IncrementViewCount(id string) error {
	err := r.db.Model(&model.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return err
	}
	if r.redis != nil {
		r.redis.ZIncrBy(postPopularKey, 1, id)
	}
	return nil
}

// Popular returns the most viewed published posts. Redis keeps the ranking;
// without it the view_count column is used.
func (r *postRepository) Popular(limit int) ([]model.BlogPost, error) {
	if r.redis != nil {
		ids, err := r.redis.ZRevRange(postPopularKey, 0, int64(limit-1))
		if err == nil && len(ids) > 0 {
			var posts []model.BlogPost
			err := r.preload(r.db).
				Where("id IN ? AND status = ? AND published_at <= ?", ids, model.PostStatusPublished, time.Now()).
				Find(&posts).Error
			if err != nil {
				return nil, err
			}
			return orderByIDs(posts, ids), nil
		}
	}

	var posts []model.BlogPost
	err := r.preload(r.db).
		Where("status = ? AND published_at <= ?", model.PostStatusPublished, time.Now()).
		Order("view_count DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Search(query string, limit int) ([]model.BlogPost, error) {
	pattern := containsPattern(query)
	var posts []model.BlogPost
	err := r.db.Preload("Category").
		Where("status = ? AND published_at <= ?", model.PostStatusPublished, time.Now()).
		Where("title ILIKE ? OR excerpt ILIKE ? OR content ILIKE ?", pattern, pattern, pattern).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListPublishedForSitemap() ([]model.BlogPost, error) {
	var posts []model.BlogPost
	err := r.db.Select("id", "slug", "published_at", "updated_at").
		Where("status = ? AND published_at <= ?", model.PostStatusPublished, time.Now()).
		Order("published_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&model.BlogPost{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *postRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category").Preload("Tags")
}

func (r *postRepository) filtered(filter PostFilter) *gorm.DB {
	q := r.db.Model(&model.BlogPost{})
	if filter.Status != "" {
		q = q.Where("blog_posts.status = ?", filter.Status)
	}
	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = blog_posts.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.TagSlug != "" {
		q = q.Where("blog_posts.id IN (?)",
			r.db.Table("blog_post_tags").
				Select("blog_post_tags.blog_post_id").
				Joins("JOIN tags ON tags.id = blog_post_tags.tag_id").
				Where("tags.slug = ?", filter.TagSlug))
	}
	return q
}

func (r *postRepository) page(q *gorm.DB, filter PostFilter, order string) ([]model.BlogPost, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.BlogPost
	err := r.preload(q).
		Select("blog_posts.*").
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) invalidatePost(slug string) {
	cacheDelete(r.redis, postBySlugCachePrefix+slug)
	r.invalidateLists()
}

func (r *postRepository) invalidateLists() {
	cacheDeletePattern(r.redis, postListCachePrefix+"*")
}

func orderByIDs(posts []model.BlogPost, ids []string) []model.BlogPost {
	byID := make(map[string]model.BlogPost, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.BlogPost, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

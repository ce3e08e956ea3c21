package service

import (
	"context"

	"buildhub/internal/model"
	"buildhub/internal/repository"
	"buildhub/internal/util"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) FindByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(limit, offset int) ([]model.User, int64, error) {
	args := m.Called(limit, offset)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(user *model.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) UpdateRole(userID, role string) error {
	return m.Called(userID, role).Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockUserRepository) CountByRole() (map[string]int64, error) {
	args := m.Called()
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *model.BlogPost) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) Update(post *model.BlogPost) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) ReplaceTags(post *model.BlogPost, tags []model.Tag) error {
	return m.Called(post, tags).Error(0)
}

func (m *MockPostRepository) Delete(post *model.BlogPost) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) FindByID(id string) (*model.BlogPost, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlogPost), args.Error(1)
}

func (m *MockPostRepository) FindBySlug(slug string) (*model.BlogPost, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlogPost), args.Error(1)
}

func (m *MockPostRepository) SlugExists(slug, excludeID string) (bool, error) {
	args := m.Called(slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) ListPublished(filter repository.PostFilter) ([]model.BlogPost, int64, error) {
	args := m.Called(filter)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) List(filter repository.PostFilter) ([]model.BlogPost, int64, error) {
	args := m.Called(filter)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) IncrementViewCount(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockPostRepository) Popular(limit int) ([]model.BlogPost, error) {
	args := m.Called(limit)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Error(1)
}

func (m *MockPostRepository) Search(query string, limit int) ([]model.BlogPost, error) {
	args := m.Called(query, limit)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Error(1)
}

func (m *MockPostRepository) ListPublishedForSitemap() ([]model.BlogPost, error) {
	args := m.Called()
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Error(1)
}

func (m *MockPostRepository) CountByStatus() (map[string]int64, error) {
	args := m.Called()
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type MockTaxonomyRepository struct {
	mock.Mock
}

func (m *MockTaxonomyRepository) CreateCategory(category *model.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockTaxonomyRepository) ListCategories() ([]model.Category, error) {
	args := m.Called()
	categories, _ := args.Get(0).([]model.Category)
	return categories, args.Error(1)
}

func (m *MockTaxonomyRepository) FindCategoryByID(id string) (*model.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockTaxonomyRepository) CreateTag(tag *model.Tag) error {
	return m.Called(tag).Error(0)
}

func (m *MockTaxonomyRepository) ListTags() ([]model.Tag, error) {
	args := m.Called()
	tags, _ := args.Get(0).([]model.Tag)
	return tags, args.Error(1)
}

func (m *MockTaxonomyRepository) FindTagsByIDs(ids []string) ([]model.Tag, error) {
	args := m.Called(ids)
	tags, _ := args.Get(0).([]model.Tag)
	return tags, args.Error(1)
}

func (m *MockTaxonomyRepository) FindTagBySlug(slug string) (*model.Tag, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTaxonomyRepository) CategorySlugExists(slug string) (bool, error) {
	args := m.Called(slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaxonomyRepository) TagSlugExists(slug string) (bool, error) {
	args := m.Called(slug)
	return args.Bool(0), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockCommentRepository) FindByID(id string) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) FindByIDs(ids []string) ([]*model.Comment, error) {
	args := m.Called(ids)
	comments, _ := args.Get(0).([]*model.Comment)
	return comments, args.Error(1)
}

func (m *MockCommentRepository) Update(comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockCommentRepository) Delete(comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockCommentRepository) FindApprovedByPost(postID string) ([]*model.Comment, error) {
	args := m.Called(postID)
	comments, _ := args.Get(0).([]*model.Comment)
	return comments, args.Error(1)
}

func (m *MockCommentRepository) CountApprovedByPost(postID string) (int64, error) {
	args := m.Called(postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) ListByStatus(status, postID string, limit, offset int) ([]*model.Comment, int64, error) {
	args := m.Called(status, postID, limit, offset)
	comments, _ := args.Get(0).([]*model.Comment)
	return comments, args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) FindByStatus(status string, limit, offset int) ([]*model.Comment, error) {
	args := m.Called(status, limit, offset)
	comments, _ := args.Get(0).([]*model.Comment)
	return comments, args.Error(1)
}

func (m *MockCommentRepository) CountByStatus() (map[string]int64, error) {
	args := m.Called()
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type MockCommentLikeRepository struct {
	mock.Mock
}

func (m *MockCommentLikeRepository) Toggle(commentID string, userID *string, ip string, isLike bool) (*repository.ReactionResult, error) {
	args := m.Called(commentID, userID, ip, isLike)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReactionResult), args.Error(1)
}

func (m *MockCommentLikeRepository) FindReaction(commentID string, userID *string, ip string) (*model.CommentLike, error) {
	args := m.Called(commentID, userID, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentLike), args.Error(1)
}

type MockModerationRuleRepository struct {
	mock.Mock
}

func (m *MockModerationRuleRepository) Create(rule *model.ModerationRule) error {
	return m.Called(rule).Error(0)
}

func (m *MockModerationRuleRepository) Update(rule *model.ModerationRule) error {
	return m.Called(rule).Error(0)
}

func (m *MockModerationRuleRepository) Delete(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockModerationRuleRepository) FindByID(id string) (*model.ModerationRule, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModerationRule), args.Error(1)
}

func (m *MockModerationRuleRepository) FindByName(name string) (*model.ModerationRule, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModerationRule), args.Error(1)
}

func (m *MockModerationRuleRepository) List() ([]model.ModerationRule, error) {
	args := m.Called()
	rules, _ := args.Get(0).([]model.ModerationRule)
	return rules, args.Error(1)
}

func (m *MockModerationRuleRepository) ListActive() ([]model.ModerationRule, error) {
	args := m.Called()
	rules, _ := args.Get(0).([]model.ModerationRule)
	return rules, args.Error(1)
}

type MockNewsletterRepository struct {
	mock.Mock
}

func (m *MockNewsletterRepository) CreateSubscriber(sub *model.NewsletterSubscriber) error {
	return m.Called(sub).Error(0)
}

func (m *MockNewsletterRepository) UpdateSubscriber(sub *model.NewsletterSubscriber) error {
	return m.Called(sub).Error(0)
}

func (m *MockNewsletterRepository) FindSubscriberByEmail(email string) (*model.NewsletterSubscriber, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NewsletterSubscriber), args.Error(1)
}

func (m *MockNewsletterRepository) FindSubscriberByConfirmToken(token string) (*model.NewsletterSubscriber, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NewsletterSubscriber), args.Error(1)
}

func (m *MockNewsletterRepository) FindSubscriberByUnsubscribeToken(token string) (*model.NewsletterSubscriber, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NewsletterSubscriber), args.Error(1)
}

func (m *MockNewsletterRepository) ListDeliverableSubscribers() ([]model.NewsletterSubscriber, error) {
	args := m.Called()
	subs, _ := args.Get(0).([]model.NewsletterSubscriber)
	return subs, args.Error(1)
}

func (m *MockNewsletterRepository) CountSubscribers() (int64, int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockNewsletterRepository) Create(n *model.Newsletter) error {
	return m.Called(n).Error(0)
}

func (m *MockNewsletterRepository) Update(n *model.Newsletter) error {
	return m.Called(n).Error(0)
}

func (m *MockNewsletterRepository) FindByID(id string) (*model.Newsletter, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Newsletter), args.Error(1)
}

func (m *MockNewsletterRepository) List(limit, offset int) ([]model.Newsletter, int64, error) {
	args := m.Called(limit, offset)
	list, _ := args.Get(0).([]model.Newsletter)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockNewsletterRepository) MarkSending(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNewsletterRepository) MarkSent(id string, recipients int) error {
	return m.Called(id, recipients).Error(0)
}

func (m *MockNewsletterRepository) ReleaseSending(id, status string) error {
	return m.Called(id, status).Error(0)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(project *model.Project) error {
	return m.Called(project).Error(0)
}

func (m *MockProjectRepository) Update(project *model.Project) error {
	return m.Called(project).Error(0)
}

func (m *MockProjectRepository) Delete(project *model.Project) error {
	return m.Called(project).Error(0)
}

func (m *MockProjectRepository) FindByID(id string) (*model.Project, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) FindBySlug(slug string) (*model.Project, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) SlugExists(slug, excludeID string) (bool, error) {
	args := m.Called(slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) ListPublic(filter repository.ProjectFilter) ([]model.Project, int64, error) {
	args := m.Called(filter)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) List(filter repository.ProjectFilter) ([]model.Project, int64, error) {
	args := m.Called(filter)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) ListByClient(clientID string) ([]model.Project, error) {
	args := m.Called(clientID)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) AddImage(image *model.ProjectImage) error {
	return m.Called(image).Error(0)
}

func (m *MockProjectRepository) NextImageOrder(projectID string) (int, error) {
	args := m.Called(projectID)
	return args.Int(0), args.Error(1)
}

func (m *MockProjectRepository) Search(query string, limit int) ([]model.Project, error) {
	args := m.Called(query, limit)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) ListPublicForSitemap() ([]model.Project, error) {
	args := m.Called()
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) CountByStatus() (map[string]int64, error) {
	args := m.Called()
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type MockDiaryRepository struct {
	mock.Mock
}

func (m *MockDiaryRepository) Create(entry *model.SiteDiaryEntry) error {
	return m.Called(entry).Error(0)
}

func (m *MockDiaryRepository) Update(entry *model.SiteDiaryEntry) error {
	return m.Called(entry).Error(0)
}

func (m *MockDiaryRepository) Delete(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockDiaryRepository) FindByID(id string) (*model.SiteDiaryEntry, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteDiaryEntry), args.Error(1)
}

func (m *MockDiaryRepository) ListByProject(projectID string, visibleOnly bool, limit, offset int) ([]model.SiteDiaryEntry, int64, error) {
	args := m.Called(projectID, visibleOnly, limit, offset)
	entries, _ := args.Get(0).([]model.SiteDiaryEntry)
	return entries, args.Get(1).(int64), args.Error(2)
}

func (m *MockDiaryRepository) ListRecent(projectIDs []string, visibleOnly bool, limit int) ([]model.SiteDiaryEntry, error) {
	args := m.Called(projectIDs, visibleOnly, limit)
	entries, _ := args.Get(0).([]model.SiteDiaryEntry)
	return entries, args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastToPost(postID, msgType string, payload interface{}) {
	m.Called(postID, msgType, payload)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendSubscriptionConfirm(to, name, confirmURL string) error {
	return m.Called(to, name, confirmURL).Error(0)
}

func (m *MockEmailService) SendNewsletter(to, name, subject, content, unsubscribeURL string) error {
	return m.Called(to, name, subject, content, unsubscribeURL).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return m.Called(exchange, routingKey, body).Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, file *util.FileData, subfolder string) (string, error) {
	args := m.Called(file, subfolder)
	return args.String(0), args.Error(1)
}

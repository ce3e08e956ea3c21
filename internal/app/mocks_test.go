package app

import (
	"context"

	"buildhub/internal/model"
	"buildhub/internal/repository"
	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(req service.RegisterRequest) (*service.AuthResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*service.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Login(req service.LoginRequest) (*service.AuthResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*service.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) GetMe(userID string) (*model.User, error) {
	args := m.Called(userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockAuthService) ListUsers(limit, offset int) ([]model.User, int64, error) {
	args := m.Called(limit, offset)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockAuthService) UpdateRole(actor service.Actor, userID, role string) (*model.User, error) {
	args := m.Called(actor, userID, role)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockAuthService) CreateUser(req service.RegisterRequest, role string) (*model.User, error) {
	args := m.Called(req, role)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(actor service.Actor, req service.PostRequest) (*model.BlogPost, error) {
	args := m.Called(actor, req)
	post, _ := args.Get(0).(*model.BlogPost)
	return post, args.Error(1)
}

func (m *MockPostService) UpdatePost(actor service.Actor, id string, req service.PostRequest) (*model.BlogPost, error) {
	args := m.Called(actor, id, req)
	post, _ := args.Get(0).(*model.BlogPost)
	return post, args.Error(1)
}

func (m *MockPostService) DeletePost(actor service.Actor, id string) error {
	return m.Called(actor, id).Error(0)
}

func (m *MockPostService) SetPublished(actor service.Actor, id string, publish bool) (*model.BlogPost, error) {
	args := m.Called(actor, id, publish)
	post, _ := args.Get(0).(*model.BlogPost)
	return post, args.Error(1)
}

func (m *MockPostService) UploadCover(ctx context.Context, actor service.Actor, id string, file *util.FileData) (*model.BlogPost, error) {
	args := m.Called(ctx, actor, id, file)
	post, _ := args.Get(0).(*model.BlogPost)
	return post, args.Error(1)
}

func (m *MockPostService) GetBySlug(actor service.Actor, slug string) (*model.BlogPost, error) {
	args := m.Called(actor, slug)
	post, _ := args.Get(0).(*model.BlogPost)
	return post, args.Error(1)
}

func (m *MockPostService) ListPublished(filter repository.PostFilter) ([]model.BlogPost, int64, error) {
	args := m.Called(filter)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *MockPostService) ListAll(actor service.Actor, filter repository.PostFilter) ([]model.BlogPost, int64, error) {
	args := m.Called(actor, filter)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *MockPostService) Popular(limit int) ([]model.BlogPost, error) {
	args := m.Called(limit)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Error(1)
}

func (m *MockPostService) CreateCategory(actor service.Actor, req service.CategoryRequest) (*model.Category, error) {
	args := m.Called(actor, req)
	category, _ := args.Get(0).(*model.Category)
	return category, args.Error(1)
}

func (m *MockPostService) ListCategories() ([]model.Category, error) {
	args := m.Called()
	categories, _ := args.Get(0).([]model.Category)
	return categories, args.Error(1)
}

func (m *MockPostService) CreateTag(actor service.Actor, req service.TagRequest) (*model.Tag, error) {
	args := m.Called(actor, req)
	tag, _ := args.Get(0).(*model.Tag)
	return tag, args.Error(1)
}

func (m *MockPostService) ListTags() ([]model.Tag, error) {
	args := m.Called()
	tags, _ := args.Get(0).([]model.Tag)
	return tags, args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) CreateComment(actor service.Actor, req service.CreateCommentRequest) (*model.Comment, error) {
	args := m.Called(actor, req)
	comment, _ := args.Get(0).(*model.Comment)
	return comment, args.Error(1)
}

func (m *MockCommentService) GetComment(actor service.Actor, id string) (*model.Comment, error) {
	args := m.Called(actor, id)
	comment, _ := args.Get(0).(*model.Comment)
	return comment, args.Error(1)
}

func (m *MockCommentService) GetTree(slug string) ([]*model.Comment, error) {
	args := m.Called(slug)
	tree, _ := args.Get(0).([]*model.Comment)
	return tree, args.Error(1)
}

func (m *MockCommentService) CountApproved(slug string) (int64, error) {
	args := m.Called(slug)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentService) UpdateComment(actor service.Actor, id string, req service.UpdateCommentRequest) (*model.Comment, error) {
	args := m.Called(actor, id, req)
	comment, _ := args.Get(0).(*model.Comment)
	return comment, args.Error(1)
}

func (m *MockCommentService) DeleteComment(actor service.Actor, id string) error {
	return m.Called(actor, id).Error(0)
}

func (m *MockCommentService) ListForModeration(actor service.Actor, status, postID string, limit, offset int) ([]*model.Comment, int64, error) {
	args := m.Called(actor, status, postID, limit, offset)
	comments, _ := args.Get(0).([]*model.Comment)
	return comments, args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentService) Moderate(actor service.Actor, id string, req service.ModerateRequest) (*model.Comment, error) {
	args := m.Called(actor, id, req)
	comment, _ := args.Get(0).(*model.Comment)
	return comment, args.Error(1)
}

func (m *MockCommentService) BulkModerate(actor service.Actor, req service.BulkModerateRequest) (int, error) {
	args := m.Called(actor, req)
	return args.Int(0), args.Error(1)
}

func (m *MockCommentService) Rescore(actor service.Actor) (*service.RescoreResult, error) {
	args := m.Called(actor)
	result, _ := args.Get(0).(*service.RescoreResult)
	return result, args.Error(1)
}

type MockReactionService struct {
	mock.Mock
}

func (m *MockReactionService) React(actor service.Actor, commentID string, isLike bool) (*repository.ReactionResult, error) {
	args := m.Called(actor, commentID, isLike)
	result, _ := args.Get(0).(*repository.ReactionResult)
	return result, args.Error(1)
}

type MockNewsletterService struct {
	mock.Mock
}

func (m *MockNewsletterService) Subscribe(req service.SubscribeRequest) (*model.NewsletterSubscriber, error) {
	args := m.Called(req)
	sub, _ := args.Get(0).(*model.NewsletterSubscriber)
	return sub, args.Error(1)
}

func (m *MockNewsletterService) Confirm(token string) (*model.NewsletterSubscriber, error) {
	args := m.Called(token)
	sub, _ := args.Get(0).(*model.NewsletterSubscriber)
	return sub, args.Error(1)
}

func (m *MockNewsletterService) Unsubscribe(token string) (*model.NewsletterSubscriber, error) {
	args := m.Called(token)
	sub, _ := args.Get(0).(*model.NewsletterSubscriber)
	return sub, args.Error(1)
}

func (m *MockNewsletterService) CreateDraft(actor service.Actor, req service.NewsletterRequest) (*model.Newsletter, error) {
	args := m.Called(actor, req)
	n, _ := args.Get(0).(*model.Newsletter)
	return n, args.Error(1)
}

func (m *MockNewsletterService) UpdateDraft(actor service.Actor, id string, req service.NewsletterRequest) (*model.Newsletter, error) {
	args := m.Called(actor, id, req)
	n, _ := args.Get(0).(*model.Newsletter)
	return n, args.Error(1)
}

func (m *MockNewsletterService) GetNewsletter(actor service.Actor, id string) (*model.Newsletter, error) {
	args := m.Called(actor, id)
	n, _ := args.Get(0).(*model.Newsletter)
	return n, args.Error(1)
}

func (m *MockNewsletterService) ListNewsletters(actor service.Actor, limit, offset int) ([]model.Newsletter, int64, error) {
	args := m.Called(actor, limit, offset)
	list, _ := args.Get(0).([]model.Newsletter)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockNewsletterService) Send(ctx context.Context, actor service.Actor, id string) (*model.Newsletter, error) {
	args := m.Called(ctx, actor, id)
	n, _ := args.Get(0).(*model.Newsletter)
	return n, args.Error(1)
}

func (m *MockNewsletterService) Deliver(job service.NewsletterJob) error {
	return m.Called(job).Error(0)
}

type MockSitemapService struct {
	mock.Mock
}

func (m *MockSitemapService) Build() ([]byte, error) {
	args := m.Called()
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(query string, limit int) (*service.SearchResult, error) {
	args := m.Called(query, limit)
	result, _ := args.Get(0).(*service.SearchResult)
	return result, args.Error(1)
}

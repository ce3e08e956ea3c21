package service

import (
	"buildhub/internal/repository"

	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	Overview(actor Actor) (*Stats, error)
}

// Stats backs the admin dashboard
type Stats struct {
	Comments    map[string]int64 `json:"comments"`
	Posts       map[string]int64 `json:"posts"`
	Projects    map[string]int64 `json:"projects"`
	Users       map[string]int64 `json:"users"`
	Subscribers SubscriberStats  `json:"subscribers"`
}

type SubscriberStats struct {
	Active int64 `json:"active"`
	Total  int64 `json:"total"`
}

type statsService struct {
	commentRepo    repository.CommentRepository
	postRepo       repository.PostRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	newsletterRepo repository.NewsletterRepository
}

func NewStatsService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	newsletterRepo repository.NewsletterRepository,
) StatsService {
	return &statsService{
		commentRepo:    commentRepo,
		postRepo:       postRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		newsletterRepo: newsletterRepo,
	}
}

func (s *statsService) Overview(actor Actor) (*Stats, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	stats := &Stats{}
	var g errgroup.Group
	g.Go(func() (err error) {
		stats.Comments, err = s.commentRepo.CountByStatus()
		return err
	})
	g.Go(func() (err error) {
		stats.Posts, err = s.postRepo.CountByStatus()
		return err
	})
	g.Go(func() (err error) {
		stats.Projects, err = s.projectRepo.CountByStatus()
		return err
	})
	g.Go(func() (err error) {
		stats.Users, err = s.userRepo.CountByRole()
		return err
	})
	g.Go(func() (err error) {
		stats.Subscribers.Active, stats.Subscribers.Total, err = s.newsletterRepo.CountSubscribers()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

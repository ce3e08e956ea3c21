package service

import (
	"strings"
	"unicode/utf8"

	"buildhub/internal/model"
	"buildhub/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	minQueryRunes      = 2
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type SearchService interface {
	Search(query string, limit int) (*SearchResult, error)
}

type SearchResult struct {
	Query    string           `json:"query"`
	Posts    []model.BlogPost `json:"posts"`
	Projects []model.Project  `json:"projects"`
}

type searchService struct {
	postRepo    repository.PostRepository
	projectRepo repository.ProjectRepository
}

func NewSearchService(postRepo repository.PostRepository, projectRepo repository.ProjectRepository) SearchService {
	return &searchService{postRepo: postRepo, projectRepo: projectRepo}
}

// Search looks for the query in published posts and public projects. Both
// lookups run concurrently.
func (s *searchService) Search(query string, limit int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryRunes {
		return nil, ErrQueryTooShort
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	result := &SearchResult{Query: query}
	var g errgroup.Group
	g.Go(func() error {
		posts, err := s.postRepo.Search(query, limit)
		result.Posts = posts
		return err
	})
	g.Go(func() error {
		projects, err := s.projectRepo.Search(query, limit)
		result.Projects = projects
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if result.Posts == nil {
		result.Posts = []model.BlogPost{}
	}
	if result.Projects == nil {
		result.Projects = []model.Project{}
	}
	return result, nil
}

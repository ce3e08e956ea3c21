package service

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"buildhub/internal/repository"
)

type SitemapService interface {
	Build() ([]byte, error)
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type sitemapService struct {
	postRepo    repository.PostRepository
	projectRepo repository.ProjectRepository
	siteURL     string
}

func NewSitemapService(postRepo repository.PostRepository, projectRepo repository.ProjectRepository, siteURL string) SitemapService {
	return &sitemapService{
		postRepo:    postRepo,
		projectRepo: projectRepo,
		siteURL:     strings.TrimRight(siteURL, "/"),
	}
}

// Build renders sitemap.xml for the static pages, published posts and
// public projects.
func (s *sitemapService) Build() ([]byte, error) {
	posts, err := s.postRepo.ListPublishedForSitemap()
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	projects, err := s.projectRepo.ListPublicForSitemap()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range []string{"/", "/blog", "/projects"} {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.siteURL + page, ChangeFreq: "weekly", Priority: 0.8})
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.siteURL + "/blog/" + p.Slug,
			LastMod:    p.UpdatedAt.UTC().Format(time.DateOnly),
			ChangeFreq: "monthly",
			Priority:   0.6,
		})
	}
	for _, p := range projects {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.siteURL + "/projects/" + p.Slug,
			LastMod:    p.UpdatedAt.UTC().Format(time.DateOnly),
			ChangeFreq: "monthly",
			Priority:   0.5,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

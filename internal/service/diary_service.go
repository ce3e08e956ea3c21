package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"buildhub/internal/model"
	"buildhub/internal/repository"

	"gorm.io/gorm"
)

const dashboardRecentEntries = 10

type DiaryService interface {
	CreateEntry(actor Actor, projectID string, req DiaryRequest) (*model.SiteDiaryEntry, error)
	UpdateEntry(actor Actor, id string, req DiaryRequest) (*model.SiteDiaryEntry, error)
	DeleteEntry(actor Actor, id string) error
	ListEntries(actor Actor, projectID string, limit, offset int) ([]model.SiteDiaryEntry, int64, error)
	Dashboard(actor Actor) (*Dashboard, error)
}

type DiaryRequest struct {
	EntryDate         string `json:"entry_date" binding:"required,datetime=2006-01-02"`
	Weather           string `json:"weather" binding:"max=100"`
	WorkCompleted     string `json:"work_completed" binding:"required"`
	Issues            string `json:"issues"`
	WorkersOnSite     int    `json:"workers_on_site" binding:"min=0"`
	IsVisibleToClient *bool  `json:"is_visible_to_client"`
}

// Dashboard is what a client sees after signing in
type Dashboard struct {
	Projects      []model.Project        `json:"projects"`
	RecentEntries []model.SiteDiaryEntry `json:"recent_entries"`
}

type diaryService struct {
	diaryRepo   repository.DiaryRepository
	projectRepo repository.ProjectRepository
}

func NewDiaryService(diaryRepo repository.DiaryRepository, projectRepo repository.ProjectRepository) DiaryService {
	return &diaryService{diaryRepo: diaryRepo, projectRepo: projectRepo}
}

func (s *diaryService) CreateEntry(actor Actor, projectID string, req DiaryRequest) (*model.SiteDiaryEntry, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if _, err := s.project(projectID); err != nil {
		return nil, err
	}

	entry := &model.SiteDiaryEntry{
		ProjectID:         projectID,
		AuthorID:          actor.UserID,
		IsVisibleToClient: true,
	}
	if err := applyDiary(entry, req); err != nil {
		return nil, err
	}
	if err := s.diaryRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("create diary entry: %w", err)
	}
	return entry, nil
}

func (s *diaryService) UpdateEntry(actor Actor, id string, req DiaryRequest) (*model.SiteDiaryEntry, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	entry, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := applyDiary(entry, req); err != nil {
		return nil, err
	}
	if err := s.diaryRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("update diary entry: %w", err)
	}
	return entry, nil
}

func (s *diaryService) DeleteEntry(actor Actor, id string) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	if _, err := s.find(id); err != nil {
		return err
	}
	return s.diaryRepo.Delete(id)
}

// ListEntries shows staff the whole diary. A client only sees entries
// flagged visible, and only for their own projects.
func (s *diaryService) ListEntries(actor Actor, projectID string, limit, offset int) ([]model.SiteDiaryEntry, int64, error) {
	if !actor.IsAuthenticated() {
		return nil, 0, ErrForbidden
	}
	project, err := s.project(projectID)
	if err != nil {
		return nil, 0, err
	}

	if actor.IsStaff() {
		return s.diaryRepo.ListByProject(project.ID, false, limit, offset)
	}
	if !ownsProject(actor, project) {
		return nil, 0, ErrForbidden
	}
	return s.diaryRepo.ListByProject(project.ID, true, limit, offset)
}

func (s *diaryService) Dashboard(actor Actor) (*Dashboard, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrForbidden
	}
	projects, err := s.projectRepo.ListByClient(actor.UserID)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{Projects: projects, RecentEntries: []model.SiteDiaryEntry{}}
	if len(projects) == 0 {
		return dash, nil
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	entries, err := s.diaryRepo.ListRecent(ids, true, dashboardRecentEntries)
	if err != nil {
		return nil, err
	}
	dash.RecentEntries = entries
	return dash, nil
}

func applyDiary(entry *model.SiteDiaryEntry, req DiaryRequest) error {
	date, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return fmt.Errorf("%w: entry_date must be YYYY-MM-DD", ErrInvalidDiaryEntry)
	}
	work := strings.TrimSpace(req.WorkCompleted)
	if work == "" {
		return fmt.Errorf("%w: work_completed is required", ErrInvalidDiaryEntry)
	}
	if req.WorkersOnSite < 0 {
		return fmt.Errorf("%w: workers_on_site must not be negative", ErrInvalidDiaryEntry)
	}

	entry.EntryDate = date
	entry.Weather = strings.TrimSpace(req.Weather)
	entry.WorkCompleted = work
	entry.Issues = strings.TrimSpace(req.Issues)
	entry.WorkersOnSite = req.WorkersOnSite
	if req.IsVisibleToClient != nil {
		entry.IsVisibleToClient = *req.IsVisibleToClient
	}
	return nil
}

func (s *diaryService) project(id string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *diaryService) find(id string) (*model.SiteDiaryEntry, error) {
	entry, err := s.diaryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}
	return entry, nil
}

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

type ProjectService interface {
	CreateProject(actor Actor, req ProjectRequest) (*model.Project, error)
	UpdateProject(actor Actor, id string, req ProjectRequest) (*model.Project, error)
	DeleteProject(actor Actor, id string) error
	GetBySlug(actor Actor, slug string) (*model.Project, error)
	ListPublic(filter repository.ProjectFilter) ([]model.Project, int64, error)
	ListAll(actor Actor, filter repository.ProjectFilter) ([]model.Project, int64, error)
	AddImage(ctx context.Context, actor Actor, id string, file *util.FileData, caption string) (*model.ProjectImage, error)
}

type ProjectRequest struct {
	Title          string     `json:"title" binding:"required,max=200"`
	Slug           string     `json:"slug" binding:"max=200"`
	Description    string     `json:"description"`
	Location       string     `json:"location" binding:"max=200"`
	Category       string     `json:"category" binding:"max=50"`
	Status         string     `json:"status" binding:"omitempty,oneof=planning ongoing completed"`
	ClientID       *string    `json:"client_id"`
	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	IsFeatured     *bool      `json:"is_featured"`
	IsPublic       *bool      `json:"is_public"`
}

type projectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	uploader    util.ImageUploader
}

// NewProjectService wires the portfolio. uploader may be nil.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	uploader util.ImageUploader,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		uploader:    uploader,
	}
}

func (s *projectService) CreateProject(actor Actor, req ProjectRequest) (*model.Project, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	project := &model.Project{Status: model.ProjectStatusPlanning}
	if err := s.apply(project, req); err != nil {
		return nil, err
	}

	source := req.Slug
	if source == "" {
		source = req.Title
	}
	slug, err := uniqueSlug(source, func(slug string) (bool, error) {
		return s.projectRepo.SlugExists(slug, "")
	})
	if err != nil {
		return nil, err
	}
	project.Slug = slug

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	zap.L().Info("project created", zap.String("project_id", project.ID), zap.String("slug", project.Slug))
	return s.projectRepo.FindByID(project.ID)
}

func (s *projectService) UpdateProject(actor Actor, id string, req ProjectRequest) (*model.Project, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(project, req); err != nil {
		return nil, err
	}

	if req.Slug != "" && util.Slugify(req.Slug) != project.Slug {
		slug := util.Slugify(req.Slug)
		taken, err := s.projectRepo.SlugExists(slug, project.ID)
		if err != nil {
			return nil, err
		}
		if taken || slug == "" {
			return nil, ErrDuplicateSlug
		}
		project.Slug = slug
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.projectRepo.FindByID(project.ID)
}

// apply copies the editable fields. A client assignment must point at a user
// with the client role; an empty client_id clears it.
func (s *projectService) apply(project *model.Project, req ProjectRequest) error {
	project.Title = strings.TrimSpace(req.Title)
	project.Description = req.Description
	project.Location = strings.TrimSpace(req.Location)
	project.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if req.Status != "" {
		if !model.IsValidProjectStatus(req.Status) {
			return ErrInvalidStatus
		}
		project.Status = req.Status
	}
	project.StartDate = req.StartDate
	project.CompletionDate = req.CompletionDate
	if req.IsFeatured != nil {
		project.IsFeatured = *req.IsFeatured
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}

	if req.ClientID != nil {
		project.Client = nil
		if *req.ClientID == "" {
			project.ClientID = nil
			return nil
		}
		client, err := s.userRepo.FindByID(*req.ClientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if client.Role != model.RoleClient {
			return ErrInvalidRole
		}
		project.ClientID = &client.ID
	}
	return nil
}

func (s *projectService) DeleteProject(actor Actor, id string) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	project, err := s.find(id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(project); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	zap.L().Info("project deleted", zap.String("project_id", id), zap.String("by", actor.UserID))
	return nil
}

// GetBySlug shows public projects to everyone. Private projects are visible
// to staff and to the client they belong to.
func (s *projectService) GetBySlug(actor Actor, slug string) (*model.Project, error) {
	project, err := s.projectRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.IsPublic || actor.IsStaff() || ownsProject(actor, project) {
		return project, nil
	}
	return nil, ErrProjectNotFound
}

func (s *projectService) ListPublic(filter repository.ProjectFilter) ([]model.Project, int64, error) {
	return s.projectRepo.ListPublic(filter)
}

func (s *projectService) ListAll(actor Actor, filter repository.ProjectFilter) ([]model.Project, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, ErrForbidden
	}
	return s.projectRepo.List(filter)
}

// AddImage uploads an image and appends it to the gallery. The first image
// also becomes the cover when none is set.
func (s *projectService) AddImage(ctx context.Context, actor Actor, id string, file *util.FileData, caption string) (*model.ProjectImage, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadImage(ctx, file, "projects/"+project.ID)
	if err != nil {
		return nil, err
	}
	order, err := s.projectRepo.NextImageOrder(project.ID)
	if err != nil {
		return nil, err
	}

	image := &model.ProjectImage{
		ProjectID: project.ID,
		URL:       url,
		Caption:   truncate(strings.TrimSpace(caption), 255),
		SortOrder: order,
	}
	if err := s.projectRepo.AddImage(image); err != nil {
		return nil, fmt.Errorf("add project image: %w", err)
	}

	if project.CoverImageURL == nil {
		project.CoverImageURL = &url
		if err := s.projectRepo.Update(project); err != nil {
			zap.L().Warn("failed to set project cover", zap.String("project_id", project.ID), zap.Error(err))
		}
	}
	return image, nil
}

func (s *projectService) find(id string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func ownsProject(actor Actor, project *model.Project) bool {
	return actor.IsAuthenticated() && project.ClientID != nil && *project.ClientID == actor.UserID
}

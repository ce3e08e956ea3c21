package app

import (
	"net/http"

	"buildhub/internal/repository"
	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService service.ProjectService
	diaryService   service.DiaryService
}

func NewProjectHandler(projectService service.ProjectService, diaryService service.DiaryService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		diaryService:   diaryService,
	}
}

// ListProjects handles the public portfolio
// GET /api/v1/projects?category=&status=&featured=true
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	projects, total, err := h.projectService.ListPublic(projectFilter(c, limit, offset))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Projects retrieved successfully", gin.H{
		"projects": projects,
		"limit":    limit,
		"offset":   offset,
		"total":    total,
	})
}

// ListAllProjects includes private projects
// GET /api/v1/admin/projects
func (h *ProjectHandler) ListAllProjects(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	projects, total, err := h.projectService.ListAll(actorFrom(c), projectFilter(c, limit, offset))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Projects retrieved successfully", gin.H{
		"projects": projects,
		"limit":    limit,
		"offset":   offset,
		"total":    total,
	})
}

// GetProject looks a project up by slug
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetBySlug(actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Project retrieved successfully", gin.H{"project": project})
}

// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Project created successfully", gin.H{"project": project})
}

// PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req service.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Project updated successfully", gin.H{"project": project})
}

// DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Project deleted successfully", nil)
}

// AddImage takes a multipart "image" and an optional "caption"
// POST /api/v1/projects/:id/images
func (h *ProjectHandler) AddImage(c *gin.Context) {
	file, ok := formImage(c, "image")
	if !ok {
		return
	}

	image, err := h.projectService.AddImage(c.Request.Context(), actorFrom(c), c.Param("id"), file, c.PostForm("caption"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Image uploaded successfully", gin.H{"image": image})
}

// ListDiary returns a project's site diary. Clients only see entries
// marked visible to them.
// GET /api/v1/projects/:id/diary
func (h *ProjectHandler) ListDiary(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	entries, total, err := h.diaryService.ListEntries(actorFrom(c), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Diary entries retrieved successfully", gin.H{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
		"total":   total,
	})
}

// POST /api/v1/projects/:id/diary
func (h *ProjectHandler) CreateDiaryEntry(c *gin.Context) {
	var req service.DiaryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.diaryService.CreateEntry(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Diary entry created successfully", gin.H{"entry": entry})
}

// PUT /api/v1/diary/:id
func (h *ProjectHandler) UpdateDiaryEntry(c *gin.Context) {
	var req service.DiaryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.diaryService.UpdateEntry(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Diary entry updated successfully", gin.H{"entry": entry})
}

// DELETE /api/v1/diary/:id
func (h *ProjectHandler) DeleteDiaryEntry(c *gin.Context) {
	if err := h.diaryService.DeleteEntry(actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Diary entry deleted successfully", nil)
}

// Dashboard is the client portal landing page
// GET /api/v1/dashboard
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.diaryService.Dashboard(actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func projectFilter(c *gin.Context, limit, offset int) repository.ProjectFilter {
	return repository.ProjectFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Featured: c.Query("featured") == "true",
		Limit:    limit,
		Offset:   offset,
	}
}

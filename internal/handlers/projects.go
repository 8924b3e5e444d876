package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/middleware"
	"github.com/AnshRaj112/devcode-backend/internal/models"
	"github.com/AnshRaj112/devcode-backend/internal/services"
)

type SaveProjectRequest struct {
	UserID      string `json:"id,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	ProjectName string `json:"projectName"`
	HTMLCode    string `json:"htmlCode"`
	CSSCode     string `json:"cssCode"`
	JSCode      string `json:"jsCode"`
}

type UpdateUserRequest struct {
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// ProjectDescriptor names the projects to delete. _id is accepted as an
// alias of projectId.
type ProjectDescriptor struct {
	ID          string `json:"_id,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
	HTML        string `json:"html,omitempty"`
	CSS         string `json:"css,omitempty"`
	JS          string `json:"js,omitempty"`
}

type DeleteProjectRequest struct {
	UserID  string            `json:"userId,omitempty"`
	Project ProjectDescriptor `json:"project"`
}

// SaveProjectData is the payload of a successful save.
type SaveProjectData struct {
	User    *models.User   `json:"user"`
	Project models.Project `json:"project"`
}

// ownerID returns the authenticated user's id. A user id sent by the client
// must name the same user.
func ownerID(r *http.Request, claimed string) (string, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return "", apperr.Unauthorized(apperr.ReasonMissing)
	}
	id := user.ID.Hex()
	if claimed = strings.TrimSpace(claimed); claimed != "" && claimed != id {
		return "", apperr.New(apperr.CodeForbidden, "Forbidden !")
	}
	return id, nil
}

// SaveProject stores a new project or replaces an existing one.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req SaveProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, err := ownerID(r, req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.SaveProject(r.Context(), userID, services.SaveProjectInput{
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		HTML:        req.HTMLCode,
		CSS:         req.CSSCode,
		JS:          req.JSCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreated(w, "Project "+res.Project.ProjectName+" saved Successfully", SaveProjectData{
		User:    res.User,
		Project: res.Project,
	})
}

// UpdateUser changes the user name and e-mail of the caller.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, err := ownerID(r, req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), userID, req.UserName, req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreated(w, "User updated successfully", user)
}

// DeleteProject removes every project of the caller matching the descriptor.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	var req DeleteProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, err := ownerID(r, req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	projectID := req.Project.ProjectID
	if projectID == "" {
		projectID = req.Project.ID
	}
	user, err := h.svc.DeleteProject(r.Context(), userID, models.ProjectMatch{
		ProjectID:   projectID,
		ProjectName: req.Project.ProjectName,
		HTML:        req.Project.HTML,
		CSS:         req.Project.CSS,
		JS:          req.Project.JS,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreated(w, "Project Deleted successfully", user)
}

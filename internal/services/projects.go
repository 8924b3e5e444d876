package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/models"
	"github.com/AnshRaj112/devcode-backend/pkg/utils"
)

// SaveProjectInput carries an editor workspace to store. An empty ProjectID
// means a new project.
type SaveProjectInput struct {
	ProjectID   string
	ProjectName string
	HTML        string
	CSS         string
	JS          string
}

// SaveProjectResult returns the owner after the write and the stored project.
type SaveProjectResult struct {
	User    *models.User
	Project models.Project
}

// SaveProject replaces the project with the given id in place, or appends a
// new one with a fresh id when none is given.
func (s *Service) SaveProject(ctx context.Context, userID string, in SaveProjectInput) (*SaveProjectResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "User id is required !")
	}

	projectID := strings.TrimSpace(in.ProjectID)
	saved := models.Project{
		ProjectID:   projectID,
		ProjectName: in.ProjectName,
		HTML:        in.HTML,
		CSS:         in.CSS,
		JS:          in.JS,
	}
	if projectID == "" {
		saved.ProjectID = primitive.NewObjectID().Hex()
	}

	user, err := s.users.Update(ctx, userID, func(u *models.User) error {
		if projectID == "" {
			u.Projects = append(u.Projects, saved)
			return nil
		}
		idx := u.ProjectIndex(projectID)
		if idx == -1 {
			return apperr.New(apperr.CodeNotFound, "Project not found !")
		}
		u.Projects[idx] = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "project saved", "user_id", userID, "project_id", saved.ProjectID, "created", projectID == "")
	return &SaveProjectResult{User: user, Project: saved}, nil
}

// DeleteProject removes every project matching all fields set on match.
// Nothing matching is not an error.
func (s *Service) DeleteProject(ctx context.Context, userID string, match models.ProjectMatch) (*models.User, error) {
	if strings.TrimSpace(userID) == "" || match.IsEmpty() {
		return nil, apperr.New(apperr.CodeBadRequest, "Project details are required !")
	}

	removed := 0
	user, err := s.users.Update(ctx, userID, func(u *models.User) error {
		removed = 0
		kept := u.Projects[:0]
		for _, p := range u.Projects {
			if match.Matches(p) {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		u.Projects = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "projects deleted", "user_id", userID, "removed", removed)
	return user, nil
}

// UpdateUser changes the display name and e-mail of an account.
func (s *Service) UpdateUser(ctx context.Context, userID, userName, email string) (*models.User, error) {
	userName = strings.TrimSpace(userName)
	email = utils.NormalizeEmail(email)
	if strings.TrimSpace(userID) == "" || userName == "" || email == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "All fields are required !")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperr.New(apperr.CodeBadRequest, "%s", err.Error())
	}
	if err := utils.ValidateUserName(userName); err != nil {
		return nil, apperr.New(apperr.CodeBadRequest, "%s", err.Error())
	}

	if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID.Hex() != userID {
		return nil, apperr.New(apperr.CodeConflict, "Email already in use !")
	} else if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
		return nil, err
	}

	user, err := s.users.Update(ctx, userID, func(u *models.User) error {
		u.UserName = userName
		u.Email = email
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", userID)
	return user, nil
}

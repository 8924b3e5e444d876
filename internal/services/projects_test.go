package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/models"
)

func TestSaveProject_AppendsWithoutID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)

	in := SaveProjectInput{ProjectName: "demo", HTML: "<p>", CSS: "p{}", JS: "1"}
	first, err := env.svc.SaveProject(ctx, user.ID.Hex(), in)
	require.NoError(t, err)
	require.Len(t, first.User.Projects, 1)
	assert.NotEmpty(t, first.Project.ProjectID)
	assert.Equal(t, first.Project, first.User.Projects[0])

	// same content again is a second project
	second, err := env.svc.SaveProject(ctx, user.ID.Hex(), in)
	require.NoError(t, err)
	assert.Len(t, second.User.Projects, 2)
	assert.NotEqual(t, first.Project.ProjectID, second.Project.ProjectID)
}

func TestSaveProject_ReplacesInPlace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)

	a, err := env.svc.SaveProject(ctx, user.ID.Hex(), SaveProjectInput{ProjectName: "a"})
	require.NoError(t, err)
	_, err = env.svc.SaveProject(ctx, user.ID.Hex(), SaveProjectInput{ProjectName: "b"})
	require.NoError(t, err)

	res, err := env.svc.SaveProject(ctx, user.ID.Hex(), SaveProjectInput{
		ProjectID:   a.Project.ProjectID,
		ProjectName: "a2",
		HTML:        "<h1>",
	})
	require.NoError(t, err)

	require.Len(t, res.User.Projects, 2)
	assert.Equal(t, models.Project{ProjectID: a.Project.ProjectID, ProjectName: "a2", HTML: "<h1>"}, res.User.Projects[0])
	assert.Equal(t, "b", res.User.Projects[1].ProjectName)
}

func TestSaveProject_UnknownIDIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)

	_, err := env.svc.SaveProject(ctx, user.ID.Hex(), SaveProjectInput{ProjectID: "missing", ProjectName: "x"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	stored, err := env.store.GetByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.Projects)
}

func TestSaveProject_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SaveProject(context.Background(), "65f1a2b3c4d5e6f708091a2b", SaveProjectInput{ProjectName: "x"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)
	id := user.ID.Hex()

	for _, name := range []string{"keep", "drop", "drop"} {
		_, err := env.svc.SaveProject(ctx, id, SaveProjectInput{ProjectName: name, HTML: "same"})
		require.NoError(t, err)
	}

	res, err := env.svc.DeleteProject(ctx, id, models.ProjectMatch{ProjectName: "drop", HTML: "same"})
	require.NoError(t, err)
	require.Len(t, res.Projects, 1)
	assert.Equal(t, "keep", res.Projects[0].ProjectName)

	// no match is a no-op
	res, err = env.svc.DeleteProject(ctx, id, models.ProjectMatch{ProjectName: "nothing"})
	require.NoError(t, err)
	assert.Len(t, res.Projects, 1)
}

func TestDeleteProject_ByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)
	id := user.ID.Hex()

	a, err := env.svc.SaveProject(ctx, id, SaveProjectInput{ProjectName: "same"})
	require.NoError(t, err)
	_, err = env.svc.SaveProject(ctx, id, SaveProjectInput{ProjectName: "same"})
	require.NoError(t, err)

	res, err := env.svc.DeleteProject(ctx, id, models.ProjectMatch{ProjectID: a.Project.ProjectID})
	require.NoError(t, err)
	require.Len(t, res.Projects, 1)
	assert.NotEqual(t, a.Project.ProjectID, res.Projects[0].ProjectID)
}

func TestDeleteProject_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)

	_, err := env.svc.DeleteProject(ctx, user.ID.Hex(), models.ProjectMatch{})
	assert.True(t, apperr.Is(err, apperr.CodeBadRequest))

	_, err = env.svc.DeleteProject(ctx, "65f1a2b3c4d5e6f708091a2b", models.ProjectMatch{ProjectName: "x"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, token := env.registerAndLogin(t)

	updated, err := env.svc.UpdateUser(ctx, user.ID.Hex(), "Ann B", "Ann.B@X.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann B", updated.UserName)
	assert.Equal(t, "ann.b@x.com", updated.Email)

	// sessions survive a profile change
	_, err = env.svc.Authenticate(ctx, token)
	assert.NoError(t, err)

	// keeping the same e-mail is fine
	_, err = env.svc.UpdateUser(ctx, user.ID.Hex(), "Ann C", "ann.b@x.com")
	assert.NoError(t, err)

	_, err = env.svc.Login(ctx, "ann.b@x.com", "secret1")
	assert.NoError(t, err)
}

func TestUpdateUser_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t)
	_, err := env.svc.Register(ctx, "bob", "bob@x.com", "secret1")
	require.NoError(t, err)

	_, err = env.svc.UpdateUser(ctx, user.ID.Hex(), "", "ann@x.com")
	assert.True(t, apperr.Is(err, apperr.CodeBadRequest))

	_, err = env.svc.UpdateUser(ctx, user.ID.Hex(), "ann", "broken")
	assert.True(t, apperr.Is(err, apperr.CodeBadRequest))

	_, err = env.svc.UpdateUser(ctx, user.ID.Hex(), "ann", "BOB@x.com")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = env.svc.UpdateUser(ctx, "65f1a2b3c4d5e6f708091a2b", "ghost", "ghost@x.com")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

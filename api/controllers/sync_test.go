package controllers

import (
	"net/http"
	"testing"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	testutils "github.com/alex-pricope/teacher-evaluation-system/api/controllers/testing"
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEndpoints(t *testing.T) {
	t.Run("Unhappy path - run while disabled", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/run", nil, adminHeaders)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("Happy path - create session then run", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		createSubmission(t, env, "alice")

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/session", nil, adminHeaders)
		require.Equal(t, http.StatusOK, res.Code)
		var status models.SyncStatusResponse
		require.NoError(t, testutils.DecodeJSON(res, &status))
		assert.True(t, status.Enabled)
		assert.Equal(t, "session-1", status.Token)

		env.remote.snaps["session-1"] = syncer.Snapshot{
			Submissions: []scoring.Submission{{ID: "remote-1", Group: "4", GroupIndex: "4", LastUpdated: scoring.FormatTimestamp(testClock)}},
		}

		res = testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/run", nil, adminHeaders)
		require.Equal(t, http.StatusAccepted, res.Code)
		var run models.SyncRunResponse
		require.NoError(t, testutils.DecodeJSON(res, &run))
		assert.True(t, run.Ran)
		assert.NotEmpty(t, run.LastSynced)
		assert.Len(t, env.state.Submissions(), 2)
		assert.Len(t, env.remote.snaps["session-1"].Submissions, 2)
	})

	t.Run("Happy path - join and disable", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		env.remote.snaps["shared"] = syncer.Snapshot{}

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/join", models.SyncJoinRequest{Token: "shared"}, adminHeaders)
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/disable", nil, adminHeaders)
		require.Equal(t, http.StatusOK, res.Code)
		var status models.SyncStatusResponse
		require.NoError(t, testutils.DecodeJSON(res, &status))
		assert.False(t, status.Enabled)
		assert.Equal(t, "shared", status.Token)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/sync", nil, adminHeaders)
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Unhappy path - join unknown session", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/join", models.SyncJoinRequest{Token: "ghost"}, adminHeaders)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("Unhappy path - join without token", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/sync/join", map[string]string{}, adminHeaders)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

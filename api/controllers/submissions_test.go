package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	testutils "github.com/alex-pricope/teacher-evaluation-system/api/controllers/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSubmission(t *testing.T, env *testEnv, judge string) models.SubmissionResponse {
	t.Helper()
	res := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", map[string]string{"judge": judge}, nil)
	require.Equal(t, http.StatusCreated, res.Code)
	var sub models.SubmissionResponse
	require.NoError(t, testutils.DecodeJSON(res, &sub))
	return sub
}

func patchSubmission(t *testing.T, env *testEnv, id string, body interface{}) models.SubmissionResponse {
	t.Helper()
	res := testutils.PerformRequest(env.router, http.MethodPatch, "/api/submissions/"+id, body, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var sub models.SubmissionResponse
	require.NoError(t, testutils.DecodeJSON(res, &sub))
	return sub
}

func TestSubmissionCreate(t *testing.T) {
	t.Run("Happy path - creates and triggers sync", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		sub := createSubmission(t, env, "alice")

		assert.NotEmpty(t, sub.ID)
		assert.Equal(t, "alice", sub.JudgeUsername)
		assert.Equal(t, "PU0", sub.Category)
		assert.Equal(t, 0, sub.TotalScore)
		assert.Equal(t, 1, env.trigger.count)
	})

	t.Run("Unhappy path - missing judge", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", map[string]string{}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestSubmissionUpdate(t *testing.T) {
	t.Run("Happy path - malformed scores are clamped", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		sub := createSubmission(t, env, "alice")

		updated := patchSubmission(t, env, sub.ID, map[string]interface{}{
			"name":       "张三",
			"group":      "1",
			"groupIndex": "3",
			"scores":     map[string]interface{}{"1_1": "99", "1_2": "abc", "2_1": 7.9, "2_3": -4, "9_9": 5},
		})
		assert.Equal(t, 15, updated.Scores["1_1"])
		assert.Equal(t, 0, updated.Scores["1_2"])
		assert.Equal(t, 7, updated.Scores["2_1"])
		assert.Equal(t, 0, updated.Scores["2_3"])
		assert.NotContains(t, updated.Scores, "9_9")
		assert.Equal(t, 22, updated.TotalScore)
		assert.Equal(t, "01-03", updated.Key)
		assert.NotEqual(t, sub.LastUpdated, updated.LastUpdated)
	})

	t.Run("Happy path - category switch clears stages", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		sub := createSubmission(t, env, "alice")

		updated := patchSubmission(t, env, sub.ID, map[string]interface{}{"selectedStages": []string{"Greeting", "Bogus", "Practice"}})
		assert.Equal(t, []string{"Greeting", "Practice"}, updated.SelectedStages)

		updated = patchSubmission(t, env, sub.ID, map[string]interface{}{"toggleStage": "Greeting"})
		assert.Equal(t, []string{"Practice"}, updated.SelectedStages)

		updated = patchSubmission(t, env, sub.ID, map[string]interface{}{"category": "PU1"})
		assert.Equal(t, "PU1", updated.Category)
		assert.Empty(t, updated.SelectedStages)
	})

	t.Run("Unhappy path - invalid category", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		sub := createSubmission(t, env, "alice")
		res := testutils.PerformRequest(env.router, http.MethodPatch, "/api/submissions/"+sub.ID, map[string]string{"category": "PU9"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - unknown submission", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		res := testutils.PerformRequest(env.router, http.MethodPatch, "/api/submissions/nope", map[string]string{"name": "x"}, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestSubmissionReadAndDelete(t *testing.T) {
	env := setupTestEnv(t, fakePolisher{})
	a := createSubmission(t, env, "alice")
	createSubmission(t, env, "bob")

	t.Run("Happy path - list filtered by judge", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions?judge=alice", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var subs []models.SubmissionResponse
		require.NoError(t, testutils.DecodeJSON(res, &subs))
		require.Len(t, subs, 1)
		assert.Equal(t, a.ID, subs[0].ID)
	})

	t.Run("Happy path - list all newest first", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions", nil, nil)
		var subs []models.SubmissionResponse
		require.NoError(t, testutils.DecodeJSON(res, &subs))
		require.Len(t, subs, 2)
		assert.Equal(t, "bob", subs[0].JudgeUsername)
	})

	t.Run("Happy path - get and delete", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions/"+a.ID, nil, nil)
		assert.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodDelete, "/api/submissions/"+a.ID, nil, nil)
		assert.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions/"+a.ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("Unhappy path - delete unknown", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/submissions/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestSubmissionPolish(t *testing.T) {
	t.Run("Happy path - stores rewritten feedback", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		sub := createSubmission(t, env, "alice")
		patchSubmission(t, env, sub.ID, map[string]string{"feedback": "good pacing"})

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions/"+sub.ID+"/polish", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var out models.PolishResponse
		require.NoError(t, testutils.DecodeJSON(res, &out))
		assert.True(t, out.Polished)
		assert.Equal(t, "GOOD PACING", out.Submission.Feedback)
	})

	t.Run("Unhappy path - model failure keeps original", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{err: errors.New("quota")})
		sub := createSubmission(t, env, "alice")
		patchSubmission(t, env, sub.ID, map[string]string{"feedback": "good pacing"})

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions/"+sub.ID+"/polish", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var out models.PolishResponse
		require.NoError(t, testutils.DecodeJSON(res, &out))
		assert.False(t, out.Polished)
		assert.Equal(t, "good pacing", out.Submission.Feedback)
	})

	t.Run("Unhappy path - unknown submission", func(t *testing.T) {
		env := setupTestEnv(t, fakePolisher{})
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions/nope/polish", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestSubmissionReportAndRubric(t *testing.T) {
	env := setupTestEnv(t, fakePolisher{})
	sub := createSubmission(t, env, "alice")
	patchSubmission(t, env, sub.ID, map[string]string{"name": "Li", "group": "2", "groupIndex": "5"})

	t.Run("Happy path - html report download", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions/"+sub.ID+"/report", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, res.Header().Get("Content-Disposition"), "02-05-Li.html")
		assert.Contains(t, res.Body.String(), "ID: 02-05-Li")
	})

	t.Run("Happy path - rubric", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/rubric", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var rubric models.RubricResponse
		require.NoError(t, testutils.DecodeJSON(res, &rubric))
		assert.Len(t, rubric.Groups, 3)
		assert.Equal(t, 100, rubric.MaxTotal)
		assert.Len(t, rubric.Stages["PU1"], 6)
	})
}

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gh "github.com/google/go-github/v63/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := NewClient("acme", "widgets", "ghp_test")
	require.NoError(t, client.SetBaseURL(server.URL))
	return client, server.Close
}

func TestFetchDiff(t *testing.T) {
	diffText := "diff --git a/app.py b/app.py\n@@ -1,1 +1,2 @@\n context\n+added\n"

	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/42", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "diff")
		fmt.Fprint(w, diffText)
	}))
	defer closeFn()

	got, err := client.FetchDiff(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, diffText, got)
}

func TestFetchDiff_NotFound(t *testing.T) {
	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer closeFn()

	_, err := client.FetchDiff(context.Background(), 99)
	assert.Error(t, err)
}

func TestHeadSHA(t *testing.T) {
	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/7", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"number": 7,
			"head":   map[string]string{"sha": "abc123"},
		})
	}))
	defer closeFn()

	sha, err := client.HeadSHA(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestFetchFileAtCommit(t *testing.T) {
	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/contents/src/app.py", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type":     "file",
			"encoding": "base64",
			"content":  "ZGVmIGhhbmRsZXIoKToK", // "def handler():\n"
		})
	}))
	defer closeFn()

	text, found, err := client.FetchFileAtCommit(context.Background(), "src/app.py", "abc123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "def handler():\n", text)
}

func TestFetchFileAtCommit_Absent(t *testing.T) {
	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer closeFn()

	_, found, err := client.FetchFileAtCommit(context.Background(), "ghost.py", "abc123")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostReview_Batch(t *testing.T) {
	var captured gh.PullRequestReviewRequest

	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/42/reviews", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1001})
	}))
	defer closeFn()

	items := []domain.Feedback{
		{File: "app.py", Line: 11, Comment: "missing error check"},
		{File: "README.md", Line: 3, Comment: "typo"},
	}

	result, err := client.PostReview(context.Background(), 42, "abc123", "2 comments", items)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), result.ReviewID)
	assert.Equal(t, 2, result.Posted)
	assert.Empty(t, result.Failed)

	require.Len(t, captured.Comments, 2)
	assert.Equal(t, "app.py", captured.Comments[0].GetPath())
	assert.Equal(t, 11, captured.Comments[0].GetLine())
	assert.Equal(t, "RIGHT", captured.Comments[0].GetSide())
	assert.Equal(t, "abc123", captured.GetCommitID())
}

func TestPostReview_FallsBackToIndividualComments(t *testing.T) {
	var individual int

	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widgets/pulls/42/reviews":
			http.Error(w, `{"message":"Unprocessable Entity"}`, http.StatusUnprocessableEntity)
		case "/repos/acme/widgets/pulls/42/comments":
			individual++
			var comment gh.PullRequestComment
			require.NoError(t, json.NewDecoder(r.Body).Decode(&comment))
			if comment.GetPath() == "bad.py" {
				http.Error(w, `{"message":"Unprocessable Entity"}`, http.StatusUnprocessableEntity)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"id": individual})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer closeFn()

	items := []domain.Feedback{
		{File: "app.py", Line: 11, Comment: "ok"},
		{File: "bad.py", Line: 5, Comment: "bad anchor"},
		{File: "README.md", Line: 3, Comment: "ok"},
	}

	result, err := client.PostReview(context.Background(), 42, "abc123", "summary", items)
	require.NoError(t, err)
	assert.Equal(t, 3, individual)
	assert.Equal(t, 2, result.Posted)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bad.py", result.Failed[0].File)
}

func TestPostReview_AllIndividualFail(t *testing.T) {
	client, closeFn := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unprocessable Entity"}`, http.StatusUnprocessableEntity)
	}))
	defer closeFn()

	items := []domain.Feedback{{File: "app.py", Line: 11, Comment: "x"}}

	result, err := client.PostReview(context.Background(), 42, "abc123", "summary", items)
	assert.Error(t, err)
	assert.Equal(t, 0, result.Posted)
	assert.Len(t, result.Failed, 1)
}

func TestBuildReviewComments_Empty(t *testing.T) {
	comments := buildReviewComments(nil)
	assert.Empty(t, comments)
}

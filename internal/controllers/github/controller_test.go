package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/isometry/gh-autoflow-app/internal/automation"
	ghctl "github.com/isometry/gh-autoflow-app/internal/controllers/github"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal GitHub Enterprise REST API for a single repository.
type fakeAPI struct {
	mu       sync.Mutex
	labels   map[string]bool
	applied  map[string][]string
	comments []string
	reacts   []string
	auth     []string
}

func newFakeAPI(t *testing.T, existing ...string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{labels: map[string]bool{}, applied: map[string][]string{}}
	for _, l := range existing {
		api.labels[l] = true
	}

	mux := http.NewServeMux()
	const repo = "/api/v3/repos/octo/widgets"
	mux.HandleFunc("POST "+repo+"/issues/{n}/labels", func(w http.ResponseWriter, r *http.Request) {
		var labels []string
		_ = json.NewDecoder(r.Body).Decode(&labels)
		api.mu.Lock()
		defer api.mu.Unlock()
		api.auth = append(api.auth, r.Header.Get("Authorization"))
		for _, l := range labels {
			if !api.labels[l] {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
				return
			}
		}
		api.applied[r.PathValue("n")] = append(api.applied[r.PathValue("n")], labels...)
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("DELETE "+repo+"/issues/{n}/labels/{label}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		n, label := r.PathValue("n"), r.PathValue("label")
		for i, l := range api.applied[n] {
			if l == label {
				api.applied[n] = append(api.applied[n][:i], api.applied[n][i+1:]...)
				_, _ = w.Write([]byte(`[]`))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Label does not exist"}`))
	})
	mux.HandleFunc("POST "+repo+"/labels", func(w http.ResponseWriter, r *http.Request) {
		var label struct {
			Name, Color, Description string
		}
		_ = json.NewDecoder(r.Body).Decode(&label)
		api.mu.Lock()
		api.labels[label.Name] = true
		api.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"name": label.Name, "color": label.Color, "description": label.Description})
	})
	mux.HandleFunc("POST "+repo+"/issues/{n}/comments", func(w http.ResponseWriter, r *http.Request) {
		var comment struct{ Body string }
		_ = json.NewDecoder(r.Body).Decode(&comment)
		api.mu.Lock()
		api.comments = append(api.comments, r.PathValue("n")+":"+comment.Body)
		api.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	mux.HandleFunc("POST "+repo+"/issues/comments/{id}/reactions", func(w http.ResponseWriter, r *http.Request) {
		var reaction struct{ Content string }
		_ = json.NewDecoder(r.Body).Decode(&reaction)
		api.mu.Lock()
		api.reacts = append(api.reacts, r.PathValue("id")+"="+reaction.Content)
		api.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	mux.HandleFunc("GET /api/v3/rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resources":{"core":{"limit":5000,"remaining":4999,"reset":1700000000}}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func newTokenController(t *testing.T, srv *httptest.Server) *ghctl.Controller {
	t.Helper()
	ctl, err := ghctl.NewController(context.Background(),
		ghctl.WithAuthMode("token"),
		ghctl.WithToken("ghp_test"),
		ghctl.WithRepository("octo", "widgets"),
		ghctl.WithAPIURL(srv.URL),
	)
	require.NoError(t, err)
	return ctl
}

func TestController_AddLabels(t *testing.T) {
	api, srv := newFakeAPI(t, "claude-flow:processing")
	ctl := newTokenController(t, srv)

	require.NoError(t, ctl.AddLabels(context.Background(), 42, "claude-flow:processing"))
	assert.Equal(t, []string{"claude-flow:processing"}, api.applied["42"])
	assert.Equal(t, []string{"Bearer ghp_test"}, api.auth)
}

func TestController_AddLabels_Unprocessable(t *testing.T) {
	_, srv := newFakeAPI(t)
	ctl := newTokenController(t, srv)

	err := ctl.AddLabels(context.Background(), 42, "claude-flow:failed")
	var apiErr *automation.RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.True(t, apiErr.IsUnprocessable())
	assert.Equal(t, "add labels", apiErr.Op)
}

func TestController_RemoveLabel(t *testing.T) {
	api, srv := newFakeAPI(t, "claude-flow:processing")
	ctl := newTokenController(t, srv)
	ctx := context.Background()

	require.NoError(t, ctl.AddLabels(ctx, 42, "claude-flow:processing"))
	require.NoError(t, ctl.RemoveLabel(ctx, 42, "claude-flow:processing"))
	assert.Empty(t, api.applied["42"])

	err := ctl.RemoveLabel(ctx, 42, "claude-flow:processing")
	var apiErr *automation.RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestController_StateManagerCreatesMissingLabel(t *testing.T) {
	api, srv := newFakeAPI(t)
	manager := automation.NewStateManager(newTokenController(t, srv))

	manager.AddLabel(context.Background(), 42, automation.LabelImplemented)
	assert.True(t, api.labels[automation.LabelImplemented])
	assert.Equal(t, []string{automation.LabelImplemented}, api.applied["42"])
}

func TestController_CommentsAndReactions(t *testing.T) {
	api, srv := newFakeAPI(t)
	ctl := newTokenController(t, srv)
	ctx := context.Background()

	require.NoError(t, ctl.CreateComment(ctx, 7, "hello"))
	require.NoError(t, ctl.CreateCommentReaction(ctx, 1001, string(automation.ReactionRocket)))
	assert.Equal(t, []string{"7:hello"}, api.comments)
	assert.Equal(t, []string{"1001=rocket"}, api.reacts)
}

func TestController_RateLimits(t *testing.T) {
	_, srv := newFakeAPI(t)
	ctl := newTokenController(t, srv)

	core, err := ctl.RateLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000, core.Limit)
	assert.Equal(t, 4999, core.Remaining)
}

type fakeSecrets struct {
	value *string
	err   error
}

func (f fakeSecrets) GetSecret(context.Context, string, bool) (*string, error) {
	return f.value, f.err
}

func TestNewController_Credentials(t *testing.T) {
	bundle := `{"token":"ghp_from_ssm","webhook_secret":"s3cr3t"}`
	testCases := []struct {
		Name          string
		Opts          []ghctl.GHOption
		ExpectError   bool
		WebhookSecret string
	}{
		{
			Name:        "token_missing",
			Opts:        []ghctl.GHOption{ghctl.WithAuthMode("token")},
			ExpectError: true,
		},
		{
			Name:        "app_incomplete",
			Opts:        []ghctl.GHOption{ghctl.WithAuthMode("app"), ghctl.WithAppCredentials(1, "", 2)},
			ExpectError: true,
		},
		{
			Name:        "unsupported_mode",
			Opts:        []ghctl.GHOption{ghctl.WithAuthMode("vault")},
			ExpectError: true,
		},
		{
			Name:        "ssm_without_store",
			Opts:        []ghctl.GHOption{ghctl.WithAuthMode("ssm")},
			ExpectError: true,
		},
		{
			Name: "ssm_fetch_failure",
			Opts: []ghctl.GHOption{
				ghctl.WithAuthMode("ssm"),
				ghctl.WithSecretGetter(fakeSecrets{err: errors.New("access denied")}),
			},
			ExpectError: true,
		},
		{
			Name: "ssm_bundle_overrides_secret",
			Opts: []ghctl.GHOption{
				ghctl.WithAuthMode("SSM"),
				ghctl.WithSSMKey("/gh-autoflow-app/credentials"),
				ghctl.WithSecretGetter(fakeSecrets{value: &bundle}),
			},
			WebhookSecret: "s3cr3t",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			opts := append([]ghctl.GHOption{ghctl.WithRepository("octo", "widgets")}, tc.Opts...)
			ctl, err := ghctl.NewController(context.Background(), opts...)
			if tc.ExpectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, ctl.WebhookSecret().Enabled())
			assert.Equal(t, tc.WebhookSecret, string(*ctl.WebhookSecret()))
			assert.Equal(t, "octo/widgets", ctl.Repository())
		})
	}
}

func TestNewController_MissingRepository(t *testing.T) {
	_, err := ghctl.NewController(context.Background(), ghctl.WithAuthMode("token"), ghctl.WithToken("x"))
	assert.Error(t, err)
}

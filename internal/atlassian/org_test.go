package atlassian

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory-sync-service/internal/model"
)

func TestExtractCursor(t *testing.T) {
	tests := []struct {
		name   string
		next   string
		want   string
		wantOK bool
	}{
		{
			name:   "Курсор среди прочих параметров",
			next:   "https://api.atlassian.com/admin/v1/orgs/o1/users?cursor=abc123&foo=1",
			want:   "abc123",
			wantOK: true,
		},
		{
			name:   "Ссылка без курсора завершает пагинацию",
			next:   "https://api.atlassian.com/admin/v1/orgs/o1/users",
			wantOK: false,
		},
		{
			name:   "Относительная ссылка",
			next:   "/admin/v1/orgs/o1/users?cursor=zzz",
			want:   "zzz",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractCursor(tt.next)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrgClient_FetchUsers_CursorPagination(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/v1/orgs/org-1/users", r.URL.Path)
		require.Equal(t, "Bearer org-key", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("cursor") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []model.RawOrgUser{
					{AccountID: "1", Name: "Alice", AccountStatus: "active", LastActive: "2024-03-01T10:00:00Z"},
					{AccountID: "2", Name: "Bob", AccountStatus: "inactive"},
				},
				"links": map[string]string{"next": srvURL + "/admin/v1/orgs/org-1/users?cursor=abc123&foo=1"},
			})
		case "abc123":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []model.RawOrgUser{
					{AccountID: "3", Name: "Carol", AccountStatus: "active", ProductAccess: []model.RawProductAccess{
						{Name: "Jira Software", URL: "site.atlassian.net", LastActive: "2024-02-01T00:00:00Z"},
					}},
				},
			})
		default:
			t.Fatalf("неожиданный курсор %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	c := NewOrgClient(srv.URL, "org-key", "org-1", discardLogger())

	var all []model.User
	err := c.FetchUsers(context.Background(), func(page []model.User) {
		all = append(all, page...)
	})
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.True(t, all[0].Active)
	assert.Equal(t, "active", all[0].RawStatus)
	assert.Equal(t, "2024-03-01 10:00:00", all[0].LastActive.Format())
	assert.False(t, all[1].Active)
	require.Len(t, all[2].ProductAccess, 1)
	assert.Equal(t, "Jira Software", all[2].ProductAccess[0].Name)
}

func TestOrgClient_FetchUsers_RequiresCredentials(t *testing.T) {
	var ae *AuthError

	noKey := NewOrgClient(DefaultOrgBaseURL, "", "org-1", discardLogger())
	err := noKey.FetchUsers(context.Background(), func([]model.User) {})
	require.ErrorAs(t, err, &ae)

	noOrg := NewOrgClient(DefaultOrgBaseURL, "org-key", "", discardLogger())
	err = noOrg.FetchUsers(context.Background(), func([]model.User) {})
	require.ErrorAs(t, err, &ae)
}

func TestOrgClient_ResolveOrgID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/v1/orgs", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "org-1", "attributes": map[string]string{"name": "Acme"}},
				{"id": "org-2", "attributes": map[string]string{"name": "Other"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOrgClient(srv.URL, "org-key", "", discardLogger())
	id, name, err := c.ResolveOrgID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "org-1", id, "берётся первая организация из ответа")
	assert.Equal(t, "Acme", name)
}

func TestOrgClient_ResolveOrgID_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	c := NewOrgClient(srv.URL, "org-key", "", discardLogger())
	_, _, err := c.ResolveOrgID(context.Background())
	assert.ErrorIs(t, err, ErrNoOrganizations)
}

func TestOrgClient_Lifecycle(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewOrgClient(srv.URL, "org-key", "org-1", discardLogger())

	require.NoError(t, c.DisableUser(context.Background(), "acc-9"))
	assert.Equal(t, "/users/acc-9/manage/lifecycle/disable", gotPath)

	require.NoError(t, c.EnableUser(context.Background(), "acc-9"))
	assert.Equal(t, "/users/acc-9/manage/lifecycle/enable", gotPath)
}

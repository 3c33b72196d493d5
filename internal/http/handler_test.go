package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "directory-sync-service/internal/http"
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

type stubGroupSource struct {
	members map[string][]model.User
}

func (s *stubGroupSource) FetchGroups(ctx context.Context, onPage func([]model.Group)) error {
	return nil
}

func (s *stubGroupSource) GroupMembers(ctx context.Context, groupName string) ([]model.User, error) {
	return s.members[groupName], nil
}

func newTestHandler(sess *session.Session, groups service.GroupSource) *httpapi.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dir := service.NewDirectoryService(sess, nil, model.SchemaStandard, groups, nil, nil, logger)
	bulk := service.NewBulkService(sess, nil, nil, 1, logger)
	return httpapi.NewHandler(dir, bulk, sess, nil, logger)
}

func seedUsers(sess *session.Session) {
	sess.ReplaceUsers(model.SchemaStandard, []model.User{
		{AccountID: "1", Name: "Alice", Email: "alice@example.com", AccountType: model.AccountTypeAtlassian, Active: true},
		{AccountID: "2", Name: "Bob", Email: "bob@example.com", AccountType: model.AccountTypeAtlassian, Active: false},
	})
}

func TestHandler_ListUsers(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "All users",
			target:         "/users/",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Search by name",
			target:         "/users/?search=alice",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Status filter",
			target:         "/users/?status=Inactive",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Bad date",
			target:         "/users/?active_from=15-01-2025",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New()
			seedUsers(sess)
			h := newTestHandler(sess, nil)

			req := httptest.NewRequest("GET", tt.target, nil)
			w := httptest.NewRecorder()
			h.Router().ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Count int          `json:"count"`
					Users []model.User `json:"users"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCount, resp.Count)
			}
		})
	}
}

func TestHandler_Selection(t *testing.T) {
	sess := session.New()
	seedUsers(sess)
	h := newTestHandler(sess, nil)
	router := h.Router()

	// Неизвестный идентификатор отклоняет запрос целиком.
	req := httptest.NewRequest("PUT", "/selection/", bytes.NewBufferString(`{"account_ids":["1","ghost"]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ghost")

	req = httptest.NewRequest("PUT", "/selection/", bytes.NewBufferString(`{"account_ids":["1","2"]}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/selection/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	req = httptest.NewRequest("DELETE", "/selection/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_Bulk(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Invalid JSON",
			body:           `{"action": "broken`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown action",
			body:           `{"action": "explode"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Group action without group name",
			body:           `{"action": "add_group"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Lifecycle without org credentials",
			body:           `{"action": "deactivate"}`,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New()
			seedUsers(sess)
			sess.SetSelection([]string{"1"})
			h := newTestHandler(sess, nil)

			req := httptest.NewRequest("POST", "/bulk", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Router().ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_FetchConflict(t *testing.T) {
	sess := session.New()
	require.True(t, sess.BeginFetch(session.FetchUsers))
	h := newTestHandler(sess, nil)

	req := httptest.NewRequest("POST", "/fetch/users", nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "FETCH_IN_PROGRESS")
}

func TestHandler_GroupMembers(t *testing.T) {
	sess := session.New()
	sess.ReplaceGroups([]model.Group{{GroupID: "g1", Name: "developers", MemberCount: 1}})
	groups := &stubGroupSource{members: map[string][]model.User{
		"developers": {{AccountID: "1", Name: "Alice"}},
	}}
	h := newTestHandler(sess, groups)
	router := h.Router()

	req := httptest.NewRequest("GET", "/groups/developers/members", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Group   string       `json:"group"`
		Members []model.User `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "developers", resp.Group)
	assert.Len(t, resp.Members, 1)

	req = httptest.NewRequest("GET", "/groups/ghost/members", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ExportUsersCSV(t *testing.T) {
	sess := session.New()
	seedUsers(sess)
	h := newTestHandler(sess, nil)

	req := httptest.NewRequest("GET", "/export/users.csv", nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "jira_users_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Display Name,Email,Account ID,Account Type,Status,Last Active\n"))
}

func TestHandler_ExportUsersCSVFiltered(t *testing.T) {
	sess := session.New()
	seedUsers(sess)
	h := newTestHandler(sess, nil)

	req := httptest.NewRequest("GET", "/export/users.csv?status=Inactive", nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// Выгружается отфильтрованное представление, а не весь снапшот.
	body := w.Body.String()
	assert.Contains(t, body, "Bob")
	assert.NotContains(t, body, "Alice")

	req = httptest.NewRequest("GET", "/export/users.csv?active_from=garbage", nil)
	w = httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ClearData(t *testing.T) {
	sess := session.New()
	seedUsers(sess)
	h := newTestHandler(sess, nil)
	router := h.Router()

	req := httptest.NewRequest("DELETE", "/data", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest("GET", "/users/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(session.New(), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

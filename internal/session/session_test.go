package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory-sync-service/internal/model"
	"directory-sync-service/internal/session"
)

func snapshot() []model.User {
	return []model.User{
		{AccountID: "1", Name: "Alice"},
		{AccountID: "2", Name: "Bob"},
	}
}

func TestSession_SelectionValidated(t *testing.T) {
	s := session.New()
	s.ReplaceUsers(model.SchemaStandard, snapshot())

	missing := s.SetSelection([]string{"1", "ghost"})
	assert.Equal(t, []string{"ghost"}, missing)
	assert.Empty(t, s.Selection(), "при неизвестных id выбор не меняется")

	require.Nil(t, s.SetSelection([]string{"2", "1", "2"}))
	sel := s.Selection()
	require.Len(t, sel, 2, "дубли схлопываются")
	assert.Equal(t, "Bob", sel[0].Name, "порядок выбора сохраняется")
	assert.Equal(t, "Alice", sel[1].Name)
}

func TestSession_SelectionInvalidatedOnReplace(t *testing.T) {
	s := session.New()
	s.ReplaceUsers(model.SchemaStandard, snapshot())
	require.Nil(t, s.SetSelection([]string{"1"}))

	// Полная замена снапшота сбрасывает выбор.
	s.ReplaceUsers(model.SchemaOrg, []model.User{{AccountID: "9", Name: "Zed"}})
	assert.Empty(t, s.Selection())

	schema, users := s.Users()
	assert.Equal(t, model.SchemaOrg, schema)
	assert.Len(t, users, 1)
}

func TestSession_ClearResetsEverything(t *testing.T) {
	s := session.New()
	s.ReplaceUsers(model.SchemaOrg, snapshot())
	s.ReplaceGroups([]model.Group{{GroupID: "g1", Name: "dev"}})
	require.Nil(t, s.SetSelection([]string{"1"}))
	s.StoreGroupMembers("dev", snapshot())

	s.Clear()

	schema, users := s.Users()
	assert.Empty(t, string(schema))
	assert.Empty(t, users)
	assert.Empty(t, s.Groups())
	assert.Empty(t, s.Selection())
	st, _ := s.GroupMembersState("dev")
	assert.Equal(t, session.StateUnloaded, st)
}

func TestSession_GroupExpansionStates(t *testing.T) {
	s := session.New()

	st, _ := s.GroupMembersState("dev")
	assert.Equal(t, session.StateUnloaded, st)

	require.True(t, s.BeginGroupExpansion("dev"))
	assert.False(t, s.BeginGroupExpansion("dev"), "повторный вход во время Loading запрещён")

	s.StoreGroupMembers("dev", snapshot())
	st, members := s.GroupMembersState("dev")
	assert.Equal(t, session.StateLoaded, st)
	assert.Len(t, members, 2)
	assert.False(t, s.BeginGroupExpansion("dev"), "загруженный ключ не перезагружается")

	s.AbortGroupExpansion("ops")
	require.True(t, s.BeginGroupExpansion("ops"))
	s.AbortGroupExpansion("ops")
	assert.True(t, s.BeginGroupExpansion("ops"), "после отката подгрузку можно повторить")
}

func TestSession_UserProducts(t *testing.T) {
	s := session.New()
	users := snapshot()
	users[0].ProductAccess = []model.ProductEntitlement{{Name: "Jira", URL: "site"}}
	s.ReplaceUsers(model.SchemaOrg, users)

	products, ok := s.UserProducts("1")
	require.True(t, ok)
	assert.Len(t, products, 1)

	// Standard-подобная запись без доступов: известный пользователь,
	// пустой результат.
	products, ok = s.UserProducts("2")
	require.True(t, ok)
	assert.Empty(t, products)

	_, ok = s.UserProducts("ghost")
	assert.False(t, ok)
}

func TestSession_FetchGuard(t *testing.T) {
	s := session.New()
	require.True(t, s.BeginFetch(session.FetchUsers))
	assert.False(t, s.BeginFetch(session.FetchUsers))
	assert.True(t, s.BeginFetch(session.FetchGroups), "разные виды выгрузок независимы")
	s.EndFetch(session.FetchUsers)
	assert.True(t, s.BeginFetch(session.FetchUsers))
}

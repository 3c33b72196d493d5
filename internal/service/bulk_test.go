package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type lifecycleMock struct {
	mock.Mock
}

func (m *lifecycleMock) DisableUser(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

func (m *lifecycleMock) EnableUser(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type membershipMock struct {
	mock.Mock
}

func (m *membershipMock) AddUserToGroup(ctx context.Context, groupName, accountID string) error {
	return m.Called(ctx, groupName, accountID).Error(0)
}

func (m *membershipMock) RemoveUserFromGroup(ctx context.Context, groupName, accountID string) error {
	return m.Called(ctx, groupName, accountID).Error(0)
}

func selectedSession(t *testing.T, ids ...string) *session.Session {
	t.Helper()
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, model.User{AccountID: id, Name: "user-" + id})
	}
	sess := session.New()
	sess.ReplaceUsers(model.SchemaOrg, users)
	require.Nil(t, sess.SetSelection(ids))
	return sess
}

func TestBulkService_PartialFailure(t *testing.T) {
	sess := selectedSession(t, "1", "2", "3", "4", "5")

	lc := new(lifecycleMock)
	lc.On("DisableUser", mock.Anything, "1").Return(nil)
	lc.On("DisableUser", mock.Anything, "2").Return(nil)
	lc.On("DisableUser", mock.Anything, "3").Return(errors.New("api status 403"))
	lc.On("DisableUser", mock.Anything, "4").Return(nil)
	lc.On("DisableUser", mock.Anything, "5").Return(nil)

	svc := service.NewBulkService(sess, lc, nil, time.Millisecond, testLogger())
	result, err := svc.Execute(context.Background(), service.ActionDeactivate, "")
	require.NoError(t, err)

	// Отказ третьего элемента не прерывает партию: все пять попыток
	// сделаны, учёт поэлементный.
	assert.Equal(t, 5, result.Attempted)
	assert.Len(t, result.Succeeded, 4)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "3", result.Failed[0].AccountID)
	assert.Contains(t, result.Failed[0].Reason, "403")
	assert.NotEmpty(t, result.JobID)
	lc.AssertExpectations(t)
}

func TestBulkService_LifecycleRequiresOrgCredentials(t *testing.T) {
	sess := selectedSession(t, "1")

	// Organization API не настроен: партия валится целиком до первого
	// сетевого вызова.
	svc := service.NewBulkService(sess, nil, new(membershipMock), time.Millisecond, testLogger())
	_, err := svc.Execute(context.Background(), service.ActionDeactivate, "")

	var appErr *service.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH", appErr.Code)
}

func TestBulkService_GroupActionRequiresGroupName(t *testing.T) {
	sess := selectedSession(t, "1")
	svc := service.NewBulkService(sess, nil, new(membershipMock), time.Millisecond, testLogger())

	_, err := svc.Execute(context.Background(), service.ActionAddToGroup, "")
	var appErr *service.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestBulkService_EmptySelection(t *testing.T) {
	sess := session.New()
	svc := service.NewBulkService(sess, new(lifecycleMock), nil, time.Millisecond, testLogger())

	_, err := svc.Execute(context.Background(), service.ActionReactivate, "")
	var appErr *service.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestBulkService_GroupActions(t *testing.T) {
	sess := selectedSession(t, "1", "2")

	ms := new(membershipMock)
	ms.On("AddUserToGroup", mock.Anything, "developers", "1").Return(nil)
	ms.On("AddUserToGroup", mock.Anything, "developers", "2").Return(nil)

	svc := service.NewBulkService(sess, nil, ms, time.Millisecond, testLogger())
	result, err := svc.Execute(context.Background(), service.ActionAddToGroup, "developers")
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)
	assert.Empty(t, result.Failed)
	ms.AssertExpectations(t)
}

func TestBulkService_PausesAfterEveryCall(t *testing.T) {
	sess := selectedSession(t, "1", "2")

	lc := new(lifecycleMock)
	lc.On("DisableUser", mock.Anything, "1").Return(nil)
	lc.On("DisableUser", mock.Anything, "2").Return(errors.New("boom"))

	pace := 20 * time.Millisecond
	svc := service.NewBulkService(sess, lc, nil, pace, testLogger())

	start := time.Now()
	_, err := svc.Execute(context.Background(), service.ActionDeactivate, "")
	require.NoError(t, err)

	// Пауза выдерживается после каждого вызова, включая последний и
	// отказавший, поэтому партия из двух записей занимает минимум два шага.
	assert.GreaterOrEqual(t, time.Since(start), 2*pace)
}

func TestBulkService_ContextCancelStopsBatch(t *testing.T) {
	sess := selectedSession(t, "1", "2", "3")

	ctx, cancel := context.WithCancel(context.Background())
	lc := new(lifecycleMock)
	lc.On("DisableUser", mock.Anything, "1").Run(func(mock.Arguments) { cancel() }).Return(nil)

	svc := service.NewBulkService(sess, lc, nil, time.Millisecond, testLogger())
	result, err := svc.Execute(ctx, service.ActionDeactivate, "")

	// Учёт уже выполненных записей сохраняется, остальные не выполняются.
	require.Error(t, err)
	assert.Equal(t, 1, result.Attempted)
	lc.AssertNumberOfCalls(t, "DisableUser", 1)
}

func TestBulkService_UnknownAction(t *testing.T) {
	sess := selectedSession(t, "1")
	svc := service.NewBulkService(sess, new(lifecycleMock), new(membershipMock), time.Millisecond, testLogger())

	_, err := svc.Execute(context.Background(), service.BulkAction("explode"), "")
	var appErr *service.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"directory-sync-service/internal/session"
)

// BulkAction перечисляет поддерживаемые массовые операции.
type BulkAction string

const (
	ActionDeactivate      BulkAction = "deactivate"
	ActionReactivate      BulkAction = "reactivate"
	ActionAddToGroup      BulkAction = "add_group"
	ActionRemoveFromGroup BulkAction = "remove_group"
)

// Пауза между вызовами мутаций, чтобы не упереться в лимиты удалённого API.
const defaultBulkPace = 500 * time.Millisecond

// LifecycleAPI описывает контракт lifecycle-мутаций Organization API.
type LifecycleAPI interface {
	DisableUser(ctx context.Context, accountID string) error
	EnableUser(ctx context.Context, accountID string) error
}

// GroupMembershipAPI описывает контракт мутаций состава групп.
type GroupMembershipAPI interface {
	AddUserToGroup(ctx context.Context, groupName, accountID string) error
	RemoveUserFromGroup(ctx context.Context, groupName, accountID string) error
}

// BulkItem — ссылка на запись, участвовавшую в массовой операции.
type BulkItem struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// BulkFailure — элемент с причиной отказа.
type BulkFailure struct {
	BulkItem
	Reason string `json:"reason"`
}

// BulkResult — поэлементный итог массовой операции.
type BulkResult struct {
	JobID     string        `json:"job_id"`
	Action    BulkAction    `json:"action"`
	GroupName string        `json:"group_name,omitempty"`
	Attempted int           `json:"attempted"`
	Succeeded []BulkItem    `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkService последовательно выполняет действие над каждым выбранным
// пользователем: по одному независимому вызову на запись, без отката и без
// атомарности. Отказ одного элемента не прерывает остальных; снапшот сервис
// не трогает — после завершения вызывающая сторона обязана перечитать
// каталог, чтобы согласовать его с изменившимся удалённым состоянием.
type BulkService struct {
	sess       *session.Session
	lifecycle  LifecycleAPI
	membership GroupMembershipAPI
	pace       time.Duration
	log        *slog.Logger
}

// NewBulkService создаёт оркестратор массовых операций. lifecycle допустимо
// передать nil, когда Organization API не настроен; pace <= 0 означает паузу
// по умолчанию (0.5s).
func NewBulkService(sess *session.Session, lifecycle LifecycleAPI, membership GroupMembershipAPI, pace time.Duration, log *slog.Logger) *BulkService {
	if pace <= 0 {
		pace = defaultBulkPace
	}
	return &BulkService{
		sess:       sess,
		lifecycle:  lifecycle,
		membership: membership,
		pace:       pace,
		log:        log,
	}
}

// pause выдерживает паузу между мутациями с учётом отмены контекста.
func (s *BulkService) pause(ctx context.Context) error {
	t := time.NewTimer(s.pace)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute выполняет действие над текущим набором выбранных записей.
// Отсутствие необходимых учётных данных или имени группы валит всю партию
// сразу, до первого сетевого вызова.
func (s *BulkService) Execute(ctx context.Context, action BulkAction, groupName string) (BulkResult, error) {
	selection := s.sess.Selection()
	if len(selection) == 0 {
		return BulkResult{}, ErrBadRequest("selection is empty")
	}

	switch action {
	case ActionDeactivate, ActionReactivate:
		if s.lifecycle == nil {
			return BulkResult{}, ErrAuth("lifecycle actions require an organization API key")
		}
	case ActionAddToGroup, ActionRemoveFromGroup:
		if groupName == "" {
			return BulkResult{}, ErrBadRequest("group_name is required for group actions")
		}
		if s.membership == nil {
			return BulkResult{}, ErrAuth("group actions require site credentials")
		}
	default:
		return BulkResult{}, ErrBadRequest("unknown bulk action")
	}

	result := BulkResult{
		JobID:     uuid.NewString(),
		Action:    action,
		GroupName: groupName,
		Succeeded: []BulkItem{},
		Failed:    []BulkFailure{},
	}
	s.log.Info("bulk action started",
		slog.String("job_id", result.JobID),
		slog.String("action", string(action)),
		slog.Int("total", len(selection)),
	)

	for _, u := range selection {
		item := BulkItem{AccountID: u.AccountID, Name: u.Name}
		var err error
		switch action {
		case ActionDeactivate:
			err = s.lifecycle.DisableUser(ctx, u.AccountID)
		case ActionReactivate:
			err = s.lifecycle.EnableUser(ctx, u.AccountID)
		case ActionAddToGroup:
			err = s.membership.AddUserToGroup(ctx, groupName, u.AccountID)
		case ActionRemoveFromGroup:
			err = s.membership.RemoveUserFromGroup(ctx, groupName, u.AccountID)
		}

		result.Attempted++
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{BulkItem: item, Reason: err.Error()})
			s.log.Warn("bulk item failed",
				slog.String("job_id", result.JobID),
				slog.String("account_id", u.AccountID),
				slog.Any("err", err),
			)
		} else {
			result.Succeeded = append(result.Succeeded, item)
		}

		// Пауза после каждого вызова независимо от исхода.
		if err := s.pause(ctx); err != nil {
			// Вызывающая сторона отменила контекст; оставшиеся записи
			// не выполняются.
			return result, ErrUpstream("bulk action interrupted", err)
		}
	}

	s.log.Info("bulk action finished",
		slog.String("job_id", result.JobID),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
	)
	return result, nil
}

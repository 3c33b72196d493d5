package service

import (
	"context"
	"errors"
	"log/slog"

	"directory-sync-service/internal/atlassian"
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/session"
)

// UserSource описывает контракт источника записей пользователей:
// адаптер обязан отдать onPage каждую успешно полученную страницу до возврата.
type UserSource interface {
	FetchUsers(ctx context.Context, onPage func([]model.User)) error
}

// GroupSource описывает контракт источника групп и их участников.
// Группы всегда читаются через Standard API, независимо от активной схемы.
type GroupSource interface {
	FetchGroups(ctx context.Context, onPage func([]model.Group)) error
	GroupMembers(ctx context.Context, groupName string) ([]model.User, error)
}

// IdentityAPI проверяет пригодность учётных данных сайта.
type IdentityAPI interface {
	Myself(ctx context.Context) (string, error)
}

// OrgResolver — одноразовый поиск идентификатора организации.
type OrgResolver interface {
	ResolveOrgID(ctx context.Context) (id, name string, err error)
	SetOrgID(id string)
}

// FetchResult описывает результат полной выгрузки.
type FetchResult struct {
	Pages   int  `json:"pages"`
	Records int  `json:"records"`
	Partial bool `json:"partial"`
}

// DirectoryService управляет снапшотом каталога: полные выгрузки и ленивая
// подгрузка участников групп и продуктовых доступов.
type DirectoryService struct {
	sess     *session.Session
	users    UserSource
	schema   model.Schema
	groups   GroupSource
	identity IdentityAPI
	resolver OrgResolver
	log      *slog.Logger
}

// NewDirectoryService создаёт сервис каталога. schema — схема активного
// источника пользователей; resolver может быть nil, когда Organization API
// не настроен.
func NewDirectoryService(sess *session.Session, users UserSource, schema model.Schema, groups GroupSource, identity IdentityAPI, resolver OrgResolver, log *slog.Logger) *DirectoryService {
	return &DirectoryService{
		sess:     sess,
		users:    users,
		schema:   schema,
		groups:   groups,
		identity: identity,
		resolver: resolver,
		log:      log,
	}
}

// Schema возвращает схему активного источника пользователей.
func (s *DirectoryService) Schema() model.Schema {
	return s.schema
}

// FetchUsers выкачивает источник пользователей до конца и целиком заменяет
// снапшот. При сбое посреди пагинации уже полученные страницы фиксируются,
// а ошибка всплывает с числом обработанных страниц; решать, оставить
// частичный результат или сбросить, должен вызывающий. Сбой до первой
// страницы снапшот не трогает: прежние данные лучше пустых.
func (s *DirectoryService) FetchUsers(ctx context.Context) (FetchResult, error) {
	if !s.sess.BeginFetch(session.FetchUsers) {
		return FetchResult{}, ErrConflict("FETCH_IN_PROGRESS", "users fetch is already running")
	}
	defer s.sess.EndFetch(session.FetchUsers)

	var all []model.User
	pages := 0
	err := s.users.FetchUsers(ctx, func(page []model.User) {
		all = append(all, page...)
		pages++
	})

	result := FetchResult{Pages: pages, Records: len(all)}
	if err == nil || pages > 0 {
		s.sess.ReplaceUsers(s.schema, all)
	}

	if err != nil {
		result.Partial = true
		s.log.Error("users fetch failed",
			slog.Int("pages", pages),
			slog.Int("records", len(all)),
			slog.Any("err", err),
		)
		return result, s.upstream("users fetch failed", err)
	}

	s.log.Info("users loaded", slog.Int("count", len(all)), slog.String("schema", string(s.schema)))
	return result, nil
}

// FetchGroups выкачивает группы до конца и целиком заменяет их снапшот;
// частичный результат при сбое также фиксируется.
func (s *DirectoryService) FetchGroups(ctx context.Context) (FetchResult, error) {
	if !s.sess.BeginFetch(session.FetchGroups) {
		return FetchResult{}, ErrConflict("FETCH_IN_PROGRESS", "groups fetch is already running")
	}
	defer s.sess.EndFetch(session.FetchGroups)

	var all []model.Group
	pages := 0
	err := s.groups.FetchGroups(ctx, func(page []model.Group) {
		all = append(all, page...)
		pages++
	})

	result := FetchResult{Pages: pages, Records: len(all)}
	if err == nil || pages > 0 {
		s.sess.ReplaceGroups(all)
	}

	if err != nil {
		result.Partial = true
		s.log.Error("groups fetch failed",
			slog.Int("pages", pages),
			slog.Int("records", len(all)),
			slog.Any("err", err),
		)
		return result, s.upstream("groups fetch failed", err)
	}

	s.log.Info("groups loaded", slog.Int("count", len(all)))
	return result, nil
}

// ValidateToken проверяет пригодность токена сайта и возвращает имя владельца.
func (s *DirectoryService) ValidateToken(ctx context.Context) (string, error) {
	who, err := s.identity.Myself(ctx)
	if err != nil {
		return "", s.upstream("token validation failed", err)
	}
	return who, nil
}

// ResolveOrg разрешает идентификатор организации и передаёт его адаптеру
// Organization API.
func (s *DirectoryService) ResolveOrg(ctx context.Context) (string, string, error) {
	if s.resolver == nil {
		return "", "", ErrAuth("organization API is not configured")
	}
	id, name, err := s.resolver.ResolveOrgID(ctx)
	if err != nil {
		if errors.Is(err, atlassian.ErrNoOrganizations) {
			return "", "", ErrNotFound(err.Error())
		}
		return "", "", s.upstream("organization lookup failed", err)
	}
	s.resolver.SetOrgID(id)
	s.log.Info("organization resolved", slog.String("org_id", id), slog.String("org_name", name))
	return id, name, nil
}

// GroupMembers возвращает участников группы, подгружая их единственным
// bulk-запросом при первом обращении; повторное раскрытие отдаёт кэш.
func (s *DirectoryService) GroupMembers(ctx context.Context, name string) ([]model.User, error) {
	if name == "" {
		return nil, ErrBadRequest("group name is required")
	}
	if _, ok := s.sess.Group(name); !ok {
		return nil, ErrNotFound("group not found in the current snapshot")
	}

	if state, cached := s.sess.GroupMembersState(name); state == session.StateLoaded {
		return cached, nil
	}
	if !s.sess.BeginGroupExpansion(name) {
		// Конкурирующее раскрытие того же ключа уже идёт.
		return nil, ErrConflict("EXPANSION_IN_PROGRESS", "group members are already being loaded")
	}

	members, err := s.groups.GroupMembers(ctx, name)
	if err != nil {
		s.sess.AbortGroupExpansion(name)
		return nil, s.upstream("group members fetch failed", err)
	}
	s.sess.StoreGroupMembers(name, members)
	return members, nil
}

// UserProducts возвращает продуктовые доступы пользователя из снапшота без
// сетевых вызовов; для Standard-схемы результат всегда пуст.
func (s *DirectoryService) UserProducts(accountID string) ([]model.ProductEntitlement, error) {
	if accountID == "" {
		return nil, ErrBadRequest("account_id is required")
	}
	products, ok := s.sess.UserProducts(accountID)
	if !ok {
		return nil, ErrNotFound("user not found in the current snapshot")
	}
	return products, nil
}

// upstream переводит ошибку адаптера в прикладную с сохранением таксономии.
func (s *DirectoryService) upstream(msg string, err error) *AppError {
	var ae *atlassian.AuthError
	if errors.As(err, &ae) {
		return ErrAuth(ae.Reason)
	}
	return ErrUpstream(msg, err)
}

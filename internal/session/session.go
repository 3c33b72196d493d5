// Package session хранит всё изменяемое состояние одного сеанса работы с
// каталогом: снапшот, набор выбранных записей и кэши ленивой подгрузки.
// Состояние живёт только в памяти и заново строится при каждой выгрузке.
package session

import (
	"sync"

	"directory-sync-service/internal/model"
)

// LoadState — состояние ленивой подгрузки раскрываемой сущности.
type LoadState int

const (
	StateUnloaded LoadState = iota
	StateLoading
	StateLoaded
)

// FetchKind различает виды выгрузок для взаимного исключения.
type FetchKind string

const (
	FetchUsers  FetchKind = "users"
	FetchGroups FetchKind = "groups"
)

type memberCacheEntry struct {
	state   LoadState
	members []model.User
}

// Session — явный объект состояния сеанса; все мутации проходят через его
// методы под общим мьютексом. Снапшот после фиксации не изменяется —
// полевых правок у закэшированных записей нет, только полная замена.
type Session struct {
	mu sync.RWMutex

	schema    model.Schema
	users     []model.User
	userIndex map[string]int
	groups    []model.Group

	groupMembers  map[string]*memberCacheEntry
	productAccess map[string][]model.ProductEntitlement

	selection []string
	selected  map[string]struct{}

	inFlight map[FetchKind]bool
}

// New создаёт пустой сеанс.
func New() *Session {
	return &Session{
		groupMembers:  make(map[string]*memberCacheEntry),
		productAccess: make(map[string][]model.ProductEntitlement),
		selected:      make(map[string]struct{}),
		inFlight:      make(map[FetchKind]bool),
	}
}

// BeginFetch помечает начало выгрузки данного вида; false — если выгрузка
// этого вида уже идёт.
func (s *Session) BeginFetch(kind FetchKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[kind] {
		return false
	}
	s.inFlight[kind] = true
	return true
}

// EndFetch снимает пометку выгрузки.
func (s *Session) EndFetch(kind FetchKind) {
	s.mu.Lock()
	delete(s.inFlight, kind)
	s.mu.Unlock()
}

// ReplaceUsers целиком заменяет снапшот пользователей. Смешивание записей
// двух схем в одной коллекции исключено: вместе с коллекцией фиксируется
// её схема, а выбор и кэш продуктовых доступов сбрасываются.
func (s *Session) ReplaceUsers(schema model.Schema, users []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema = schema
	s.users = users
	s.userIndex = make(map[string]int, len(users))
	for i, u := range users {
		s.userIndex[u.AccountID] = i
	}
	s.productAccess = make(map[string][]model.ProductEntitlement)
	s.clearSelectionLocked()
}

// Users возвращает активную схему и снапшот пользователей.
func (s *Session) Users() (model.Schema, []model.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema, s.users
}

// User ищет пользователя снапшота по account_id.
func (s *Session) User(accountID string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.userIndex[accountID]
	if !ok {
		return model.User{}, false
	}
	return s.users[i], true
}

// ReplaceGroups целиком заменяет снапшот групп и сбрасывает кэш участников.
func (s *Session) ReplaceGroups(groups []model.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = groups
	s.groupMembers = make(map[string]*memberCacheEntry)
}

// Groups возвращает снапшот групп.
func (s *Session) Groups() []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups
}

// Group ищет группу снапшота по имени.
func (s *Session) Group(name string) (model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Name == name {
			return g, true
		}
	}
	return model.Group{}, false
}

// Clear сбрасывает сеанс целиком.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = ""
	s.users = nil
	s.userIndex = nil
	s.groups = nil
	s.groupMembers = make(map[string]*memberCacheEntry)
	s.productAccess = make(map[string][]model.ProductEntitlement)
	s.clearSelectionLocked()
}

// ---------------- Выбор записей ---------------- //

// SetSelection заменяет набор выбранных записей ссылками на записи снапшота.
// Возвращает список неизвестных account_id; при их наличии выбор не меняется.
func (s *Session) SetSelection(accountIDs []string) (missing []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range accountIDs {
		if _, ok := s.userIndex[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return missing
	}

	s.clearSelectionLocked()
	for _, id := range accountIDs {
		if _, dup := s.selected[id]; dup {
			continue
		}
		s.selected[id] = struct{}{}
		s.selection = append(s.selection, id)
	}
	return nil
}

// Selection возвращает выбранные записи в порядке выбора.
func (s *Session) Selection() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.selection))
	for _, id := range s.selection {
		if i, ok := s.userIndex[id]; ok {
			out = append(out, s.users[i])
		}
	}
	return out
}

// ClearSelection сбрасывает выбор.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.clearSelectionLocked()
	s.mu.Unlock()
}

func (s *Session) clearSelectionLocked() {
	s.selection = nil
	s.selected = make(map[string]struct{})
}

// ---------------- Кэш ленивой подгрузки ---------------- //

// GroupMembersState возвращает состояние подгрузки участников группы и
// закэшированный результат, если он уже есть.
func (s *Session) GroupMembersState(name string) (LoadState, []model.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.groupMembers[name]
	if !ok {
		return StateUnloaded, nil
	}
	return e.state, e.members
}

// BeginGroupExpansion переводит группу из Unloaded в Loading; false — если
// подгрузка уже идёт или завершена.
func (s *Session) BeginGroupExpansion(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.groupMembers[name]; ok && e.state != StateUnloaded {
		return false
	}
	s.groupMembers[name] = &memberCacheEntry{state: StateLoading}
	return true
}

// StoreGroupMembers фиксирует результат подгрузки участников; повторная
// подгрузка того же ключа больше не выполняется.
func (s *Session) StoreGroupMembers(name string, members []model.User) {
	s.mu.Lock()
	s.groupMembers[name] = &memberCacheEntry{state: StateLoaded, members: members}
	s.mu.Unlock()
}

// AbortGroupExpansion откатывает неудачную подгрузку в Unloaded.
func (s *Session) AbortGroupExpansion(name string) {
	s.mu.Lock()
	delete(s.groupMembers, name)
	s.mu.Unlock()
}

// UserProducts возвращает продуктовые доступы пользователя из снапшота,
// мемоизируя результат; сетевых вызовов не требуется — данные уже пришли
// вместе с пользователем (для Standard-схемы их нет вовсе). false — если
// пользователь не найден в снапшоте.
func (s *Session) UserProducts(accountID string) ([]model.ProductEntitlement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.productAccess[accountID]; ok {
		return cached, true
	}
	i, ok := s.userIndex[accountID]
	if !ok {
		return nil, false
	}
	products := s.users[i].ProductAccess
	s.productAccess[accountID] = products
	return products, true
}

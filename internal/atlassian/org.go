package atlassian

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"directory-sync-service/internal/model"
)

// DefaultOrgBaseURL — адрес Organization API.
const DefaultOrgBaseURL = "https://api.atlassian.com"

// Пауза между страницами Organization API.
const orgPageInterval = 500 * time.Millisecond

// ErrNoOrganizations возвращается резолвером, когда за ключом не числится
// ни одной организации.
var ErrNoOrganizations = errors.New("no organizations found for this account")

// OrgClient — адаптер Organization API: bearer-токен, cursor-пагинация,
// полные данные активности и продуктовых доступов. Этот же адаптер выполняет
// lifecycle-мутации (deactivate/reactivate).
type OrgClient struct {
	client
	baseURL string
	apiKey  string
	limiter *rate.Limiter

	mu    sync.RWMutex
	orgID string
}

// NewOrgClient создаёт адаптер Organization API. orgID может быть пустым:
// тогда его обязан поставить резолвер через SetOrgID до первой выгрузки.
func NewOrgClient(baseURL, apiKey, orgID string, log *slog.Logger) *OrgClient {
	c := &OrgClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		orgID:   orgID,
		limiter: rate.NewLimiter(rate.Every(orgPageInterval), 1),
	}
	c.httpc = &http.Client{}
	c.log = log
	c.authorize = func(rq *http.Request) {
		rq.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return c
}

// SetOrgID задаёт идентификатор организации, полученный от резолвера.
func (c *OrgClient) SetOrgID(id string) {
	c.mu.Lock()
	c.orgID = id
	c.mu.Unlock()
}

// OrgID возвращает текущий идентификатор организации.
func (c *OrgClient) OrgID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orgID
}

func (c *OrgClient) checkKey() error {
	if c.apiKey == "" {
		return &AuthError{Reason: "organization API key is not set"}
	}
	return nil
}

type orgUsersPage struct {
	Data  []model.RawOrgUser `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

// FetchUsers выкачивает пользователей организации постранично. Курсор
// извлекается из ссылки links.next; отсутствие ссылки завершает пагинацию.
// Страницы, отданные до сбоя, остаются у вызывающей стороны.
func (c *OrgClient) FetchUsers(ctx context.Context, onPage func([]model.User)) error {
	if err := c.checkKey(); err != nil {
		return err
	}
	orgID := c.OrgID()
	if orgID == "" {
		return &AuthError{Reason: "organization id is not set; resolve it first"}
	}

	pages, records := 0, 0
	cursor := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return &FetchError{Pages: pages, Records: records, Err: err}
		}

		q := url.Values{}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var page orgUsersPage
		if err := c.getJSON(ctx, c.baseURL+"/admin/v1/orgs/"+orgID+"/users", q, &page); err != nil {
			return &FetchError{Pages: pages, Records: records, Err: err}
		}
		if len(page.Data) == 0 {
			return nil
		}

		users := make([]model.User, 0, len(page.Data))
		for _, r := range page.Data {
			u := model.NormalizeOrgUser(r)
			if model.SuspiciousEmail(u.Email) {
				c.log.Warn("user email looks incomplete",
					slog.String("account_id", u.AccountID),
					slog.String("email", u.Email),
				)
			}
			users = append(users, u)
		}
		onPage(users)
		pages++
		records += len(users)
		c.log.Debug("org users page fetched", slog.Int("page", pages), slog.Int("total", records))

		next := page.Links.Next
		if next == "" {
			return nil
		}
		cur, ok := extractCursor(next)
		if !ok {
			return nil
		}
		cursor = cur
	}
}

// extractCursor достаёт токен курсора из ссылки next; false — если ссылка
// не содержит курсора и пагинацию следует завершить.
func extractCursor(next string) (string, bool) {
	u, err := url.Parse(next)
	if err != nil {
		return "", false
	}
	cur := u.Query().Get("cursor")
	return cur, cur != ""
}

type orgEntry struct {
	ID         string `json:"id"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

// ResolveOrgID выполняет одноразовый поиск организации по ключу и возвращает
// её идентификатор и имя. Берётся первая организация из ответа.
func (c *OrgClient) ResolveOrgID(ctx context.Context) (string, string, error) {
	if err := c.checkKey(); err != nil {
		return "", "", err
	}

	var resp struct {
		Data []orgEntry `json:"data"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/admin/v1/orgs", nil, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Data) == 0 {
		return "", "", ErrNoOrganizations
	}
	org := resp.Data[0]
	return org.ID, org.Attributes.Name, nil
}

// DisableUser отключает учётную запись. Мутация не повторяется.
func (c *OrgClient) DisableUser(ctx context.Context, accountID string) error {
	return c.lifecycle(ctx, accountID, "disable")
}

// EnableUser включает учётную запись. Мутация не повторяется.
func (c *OrgClient) EnableUser(ctx context.Context, accountID string) error {
	return c.lifecycle(ctx, accountID, "enable")
}

func (c *OrgClient) lifecycle(ctx context.Context, accountID, op string) error {
	if err := c.checkKey(); err != nil {
		return err
	}
	return c.mutate(ctx, http.MethodPost, c.baseURL+"/users/"+accountID+"/manage/lifecycle/"+op, nil, nil)
}

package atlassian

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"directory-sync-service/internal/model"
)

const (
	standardUserPageSize = 1000
	groupPageSize        = 50
	memberPageSize       = 1000

	// Пауза между страницами Standard API.
	standardPageInterval = 300 * time.Millisecond
)

// StandardClient — адаптер Standard API сайта: basic-auth, offset-пагинация.
// Записи пользователей не несут last_active и продуктовых доступов.
type StandardClient struct {
	client
	baseURL string
	email   string
	token   string
	limiter *rate.Limiter
}

// NewStandardClient создаёт адаптер Standard API для указанного сайта.
func NewStandardClient(baseURL, email, token string, log *slog.Logger) *StandardClient {
	c := &StandardClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		token:   token,
		limiter: rate.NewLimiter(rate.Every(standardPageInterval), 1),
	}
	c.httpc = &http.Client{}
	c.log = log
	c.authorize = func(rq *http.Request) {
		rq.SetBasicAuth(email, token)
	}
	return c
}

func (c *StandardClient) checkCredentials() error {
	if c.baseURL == "" {
		return &AuthError{Reason: "site base URL is not set"}
	}
	if c.email == "" || c.token == "" {
		return &AuthError{Reason: "email and API token are required"}
	}
	return nil
}

func (c *StandardClient) url(path string) string {
	return c.baseURL + path
}

// FetchUsers выкачивает всех пользователей сайта постранично и вызывает
// onPage для каждой полученной страницы. Пагинация завершается пустой
// страницей. Страницы, отданные до сбоя, остаются у вызывающей стороны.
func (c *StandardClient) FetchUsers(ctx context.Context, onPage func([]model.User)) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	pages, records := 0, 0
	startAt := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return &FetchError{Pages: pages, Records: records, Err: err}
		}

		q := url.Values{}
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(standardUserPageSize))

		var raw []model.RawStandardUser
		if err := c.getJSON(ctx, c.url("/rest/api/3/users/search"), q, &raw); err != nil {
			return &FetchError{Pages: pages, Records: records, Err: err}
		}
		if len(raw) == 0 {
			return nil
		}

		users := make([]model.User, 0, len(raw))
		for _, r := range raw {
			u := model.NormalizeStandardUser(r)
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
		startAt += standardUserPageSize
		c.log.Debug("users page fetched", slog.Int("page", pages), slog.Int("total", records))
	}
}

type rawGroupPage struct {
	Values []model.RawGroup `json:"values"`
	// IsLast — указатель: отсутствие поля означает последнюю страницу.
	IsLast *bool `json:"isLast"`
}

// FetchGroups выкачивает все группы сайта; пагинация завершается по флагу
// isLast (отсутствующий флаг трактуется как последняя страница).
func (c *StandardClient) FetchGroups(ctx context.Context, onPage func([]model.Group)) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	pages, records := 0, 0
	startAt := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return &FetchError{Pages: pages, Records: records, Err: err}
		}

		q := url.Values{}
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(groupPageSize))

		var page rawGroupPage
		if err := c.getJSON(ctx, c.url("/rest/api/3/group/bulk"), q, &page); err != nil {
			return &FetchError{Pages: pages, Records: records, Err: err}
		}

		groups := make([]model.Group, 0, len(page.Values))
		for _, r := range page.Values {
			groups = append(groups, model.NormalizeGroup(r))
		}
		if len(groups) > 0 {
			onPage(groups)
			pages++
			records += len(groups)
		}

		if page.IsLast == nil || *page.IsLast {
			return nil
		}
		startAt += groupPageSize
	}
}

// GroupMembers возвращает участников группы одним bulk-запросом
// (до 1000 записей).
func (c *StandardClient) GroupMembers(ctx context.Context, groupName string) ([]model.User, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("groupname", groupName)
	q.Set("maxResults", strconv.Itoa(memberPageSize))

	var page struct {
		Values []model.RawStandardUser `json:"values"`
	}
	if err := c.getJSON(ctx, c.url("/rest/api/3/group/member"), q, &page); err != nil {
		return nil, err
	}

	members := make([]model.User, 0, len(page.Values))
	for _, r := range page.Values {
		members = append(members, model.NormalizeStandardUser(r))
	}
	return members, nil
}

// Myself проверяет пригодность токена и возвращает имя его владельца.
func (c *StandardClient) Myself(ctx context.Context) (string, error) {
	if err := c.checkCredentials(); err != nil {
		return "", err
	}

	var me struct {
		DisplayName  string `json:"displayName"`
		EmailAddress string `json:"emailAddress"`
	}
	if err := c.getJSON(ctx, c.url("/rest/api/3/myself"), nil, &me); err != nil {
		return "", err
	}
	if me.DisplayName != "" {
		return me.DisplayName, nil
	}
	return me.EmailAddress, nil
}

// AddUserToGroup добавляет пользователя в группу. Мутация не повторяется.
func (c *StandardClient) AddUserToGroup(ctx context.Context, groupName, accountID string) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("groupname", groupName)
	payload := map[string]string{"accountId": accountID}
	return c.mutate(ctx, http.MethodPost, c.url("/rest/api/3/group/user"), q, payload)
}

// RemoveUserFromGroup удаляет пользователя из группы. Мутация не повторяется.
func (c *StandardClient) RemoveUserFromGroup(ctx context.Context, groupName, accountID string) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("groupname", groupName)
	q.Set("accountId", accountID)
	return c.mutate(ctx, http.MethodDelete, c.url("/rest/api/3/group/user"), q, nil)
}

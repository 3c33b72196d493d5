// Package export сериализует коллекции каталога в CSV
// с фиксированными заголовками для каждого вида сущностей.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"directory-sync-service/internal/model"
)

// standardLastActive подставляется вместо времени активности, когда активная
// схема его не отдаёт.
const standardLastActive = "N/A (use Org API)"

// memberLastActive подставляется для участников групп: bulk-эндпоинт участников
// не возвращает активность.
const memberLastActive = "N/A"

var (
	userHeader = []string{"Display Name", "Email", "Account ID", "Account Type", "Status", "Last Active"}

	groupHeader = []string{"Group Name", "Group ID", "Member Count", "Member Name", "Member Email", "Member ID", "Member Type", "Member Status", "Last Active"}

	productHeader = []string{"Product Name", "Product URL", "User Name", "User Email", "User Status", "Last Active in Product"}
)

// Filename формирует имя файла выгрузки вида jira_users_20060102_150405.csv.
func Filename(kind string, now time.Time) string {
	return fmt.Sprintf("jira_%s_%s.csv", kind, now.Format("20060102_150405"))
}

// WriteUsers пишет снапшот пользователей. Для стандартной схемы колонка
// Last Active заполняется заглушкой: этот источник активность не отдаёт.
func WriteUsers(w io.Writer, schema model.Schema, users []model.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(userHeader); err != nil {
		return err
	}
	for _, u := range users {
		lastActive := standardLastActive
		if schema == model.SchemaOrg {
			lastActive = u.LastActive.Format()
		}
		row := []string{u.Name, u.Email, u.AccountID, string(u.AccountType), u.StatusLabel(schema), lastActive}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGroups пишет группы вместе с раскрытыми участниками: по строке на
// участника, одна строка с пустыми колонками участника для нераскрытой группы.
// members возвращает кэш участников и признак того, что группа раскрыта.
func WriteGroups(w io.Writer, groups []model.Group, members func(groupName string) ([]model.User, bool)) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(groupHeader); err != nil {
		return err
	}
	for _, g := range groups {
		list, loaded := members(g.Name)
		if !loaded || len(list) == 0 {
			row := []string{g.Name, g.GroupID, strconv.Itoa(g.MemberCount), "", "", "", "", "", ""}
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		count := strconv.Itoa(len(list))
		for _, m := range list {
			row := []string{
				g.Name,
				g.GroupID,
				count,
				m.Name,
				m.Email,
				m.AccountID,
				string(m.AccountType),
				m.StatusLabel(model.SchemaStandard),
				memberLastActive,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProducts пишет агрегат продуктов: по строке на пользователя продукта.
// Порядок следования задаёт агрегатор, здесь он не меняется.
func WriteProducts(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return err
	}
	for _, p := range products {
		for _, u := range p.Users {
			row := []string{p.Name, p.URL, u.Name, u.Email, u.Status, u.LastActive}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"directory-sync-service/internal/atlassian"
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

// engine собирает сессию и сервисы каталога из разрешённых опций подключения.
type engine struct {
	sess *session.Session
	dir  *service.DirectoryService
	bulk *service.BulkService
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newEngine(o *options) (*engine, error) {
	if o.baseURL == "" || o.email == "" || o.apiToken == "" {
		return nil, fmt.Errorf("--base-url, --email and --api-token are required (flags, DIRSYNC_* env or a profile)")
	}
	if o.useOrg && o.orgAPIKey == "" {
		return nil, fmt.Errorf("--org requires --org-api-key")
	}

	log := o.logger()
	std := atlassian.NewStandardClient(o.baseURL, o.email, o.apiToken, log)

	var (
		userSrc   service.UserSource = std
		schema                       = model.SchemaStandard
		resolver  service.OrgResolver
		lifecycle service.LifecycleAPI
	)
	if o.orgAPIKey != "" {
		org := atlassian.NewOrgClient(atlassian.DefaultOrgBaseURL, o.orgAPIKey, o.orgID, log)
		resolver = org
		lifecycle = org
		if o.useOrg {
			userSrc = org
			schema = model.SchemaOrg
		}
	}

	sess := session.New()
	return &engine{
		sess: sess,
		dir:  service.NewDirectoryService(sess, userSrc, schema, std, std, resolver, log),
		bulk: service.NewBulkService(sess, lifecycle, std, 0, log),
	}, nil
}

// printTable печатает таблицу с заголовками в верхнем регистре
// и выравниванием по ширине колонок.
func printTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = pad(strings.ToUpper(c), widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cells[i] = pad(cell, widths[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// writeCSVFile сохраняет выгрузку в файл в текущем каталоге и
// печатает его имя.
func writeCSVFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	fmt.Fprintf(os.Stdout, "Exported to %s\n", name)
	return nil
}

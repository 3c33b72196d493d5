// Package main запускает консольный интерфейс каталога
package main

import (
	"os"

	"directory-sync-service/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

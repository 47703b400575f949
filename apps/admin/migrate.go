package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/trezcool/kelasi/fs"
)

var gooseRunFunc = goose.Run // mockable

// migrate runs a goose command (up, down, status, ...) against the app database.
func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db.DB, "migrations", args[1:]...)
}

package main

import (
	"errors"

	"github.com/GausMx/Scoolynk-app-sub000/storage/database"
)

var (
	gooseRunFunc = database.RunMigration // mockable

	errNoSQL = errors.New("migrations only apply to the postgres engine")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQL
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

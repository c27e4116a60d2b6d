package main

import "github.com/pressly/goose/v3"

var gooseRunFunc = goose.Run // mockable

const migrationsDir = "migrations"

func (cli *commandLine) migrate(args []string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, migrationsDir, arguments...)
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/storage"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	ctx := context.Background()

	// set up DB
	stores, err := storage.Open(ctx, conf)
	errAndDie(err)

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	// start CLI
	cli := commandLine{
		db:        stores.SQL,
		usrRepo:   stores.Users,
		schoolSvc: school.NewService(stores.Schools, validate),
		out:       os.Stdout,
	}
	err = cli.run(os.Args)
	if cerr := stores.Close(ctx); cerr != nil {
		logger.Printf("closing database: %s\n", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

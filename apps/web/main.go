package main

import (
	"fmt"
	"log"
	"os"

	echoadmin "github.com/shulehq/shule-admin/apps/web/echo"
	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
	logsvc "github.com/shulehq/shule-admin/services/logger"
	"github.com/shulehq/shule-admin/services/lms"
	"github.com/shulehq/shule-admin/storage/cache"
)

func main() {
	conf := core.Conf
	std := log.New(os.Stdout, fmt.Sprintf("%s [WEB] : ", conf.AppName), log.LstdFlags|log.Lshortfile)

	// set up services
	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}
	validate, translator := core.NewValidator()

	sessions := session.NewStore()
	resolver := session.NewResolver(session.ContextProvider{})
	client, err := lms.NewClient(conf.API.BaseURL, resolver, lms.WithLogger(logger))
	errAndDie(err)

	store := cache.New()

	// start admin gateway
	app := echoadmin.NewServer(
		&echoadmin.Options{
			Address:    conf.Addr(),
			Client:     client,
			Courses:    lms.NewCourseService(client, store),
			Groups:     lms.NewGroupService(client, store),
			Sessions:   sessions,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
		},
	)
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
	logsvc "github.com/shulehq/shule-admin/services/logger"
	"github.com/shulehq/shule-admin/services/lms"
	"github.com/shulehq/shule-admin/storage/cache"
)

func main() {
	conf := core.Conf
	std := log.New(os.Stdout, fmt.Sprintf("%s [ADMIN] : ", conf.AppName), log.LstdFlags)

	provider := &session.StaticProvider{}
	resolver := session.NewResolver(provider)
	client, err := lms.NewClient(conf.API.BaseURL, resolver, lms.WithLogger(logsvc.NewConsoleLogger(std)))
	if err != nil {
		log.Fatal(err)
	}

	store := cache.New()
	validate, translator := core.NewValidator()

	cli := &commandLine{
		client:     client,
		provider:   provider,
		courses:    lms.NewCourseService(client, store),
		groups:     lms.NewGroupService(client, store),
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		log.Fatal(err)
	}
}

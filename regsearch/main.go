package main

import (
	"os"

	"github.com/bcgov/regsearch-app/log"
	"github.com/bcgov/regsearch-app/regsearch/regsearchcli"
)

func main() {
	app := regsearchcli.GetApp()
	if err := app.Run(os.Args); err != nil {
		log.CLI.Fatal(err)
	}
}

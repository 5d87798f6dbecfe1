package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

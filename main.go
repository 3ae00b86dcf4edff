package main

import (
	"os"

	"github.com/mompick/mompick-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"nerd-search/app"
)

func main() {
	os.Exit(app.Run())
}

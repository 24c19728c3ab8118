package main

import (
	"log"

	"github.com/indeses-deepak/explore/cmd/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"funnel-copilot/internal/app"
)

func main() {
	a, err := app.NewWorker()
	if err != nil {
		log.Fatal("error creating an application instance: ", err)
	}

	a.Run()
}

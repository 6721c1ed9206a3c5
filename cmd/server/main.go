package main

import (
	"log"

	"funnel-copilot/internal/app"
)

func main() {
	a, err := app.NewServer()
	if err != nil {
		log.Fatal("error creating an application instance: ", err)
	}

	err = a.Run()
	if err != nil {
		log.Fatal("application startup error: ", err)
	}
}

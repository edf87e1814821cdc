package main

import (
	"fmt"
	"os"

	"github.com/parlatrack/backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Log.Info("server listening", "port", application.Cfg.Port)
	if err := application.Run(); err != nil {
		application.Log.Error("server failed", "error", err)
	}
}

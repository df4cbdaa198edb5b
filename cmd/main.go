package main

import (
	"fmt"
	"os"

	"github.com/inquiryos/inquiry-os/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	addr := ":" + a.Cfg.APIPort
	a.Log.Info("server listening", "addr", addr)
	if err := a.Run(addr); err != nil {
		a.Log.Warn("server stopped", "error", err)
	}
}

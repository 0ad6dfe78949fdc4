package main

import (
	"fmt"
	"os"

	"github.com/ssingh-rookie/LeafWise-API/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("LeafWise API listening", "addr", a.Cfg.HTTPAddr)
	if err := a.Run(a.Cfg.HTTPAddr); err != nil {
		a.Log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

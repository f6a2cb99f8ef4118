package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"attendly/internal/app/server"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "err", err)
	}
	server.Run()
}

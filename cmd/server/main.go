package main

import (
	"os"

	"memochat/internal/app"
)

// @title        memochat
// @version      1.0
// @description  Chat service with per-user memory and streamed replies.
// @BasePath     /
func main() {
	os.Exit(app.Run())
}

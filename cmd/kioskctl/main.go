// Command kioskctl performs administrative tasks against the kiosk database:
// schema setup, account management and session cleanup.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/keymint/keymint-api/internal/util"
)

// hashsecret prints the SHA-256 digest of an admin API key in the form the
// server expects for auth.adminKeyHash. The plaintext secret never needs to
// appear in the config file.
func main() {
	var secret string
	switch {
	case len(os.Args) > 1:
		secret = os.Args[1]
	case os.Getenv("API_KEY") != "":
		secret = os.Getenv("API_KEY")
	default:
		log.Fatal("Usage: hashsecret <admin-api-key> (or set API_KEY)")
	}

	fmt.Printf("auth.adminKeyHash: %s\n", util.HashAdminKey(secret))
}

// cmd/genhash/main.go — prints a bcrypt hash for manual password fixes.
// Usage: go run ./cmd/genhash 'new-password'
package main

import (
	"fmt"
	"os"

	"stockroom/internal/security"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := security.NewBcryptHasher(bcrypt.DefaultCost).Hash(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}

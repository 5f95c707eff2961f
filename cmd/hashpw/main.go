// Command hashpw prints the bcrypt hash for AUTH_ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spec-kit/coupon-saver/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: hashpw <password>")
	}
	hashed, err := auth.HashPassword(os.Args[1], 12)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hashed)
}

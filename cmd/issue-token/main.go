// Command issue-token prints an access token for local testing.  Accounts
// live in another service; this signs with the same JWT_SECRET.
//
//	issue-token -role STAFF -sub 7 -ttl 120
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/utils"
)

func main() {
	_ = godotenv.Load()
	role := flag.String("role", middleware.RoleCustomer, "token role (CUSTOMER or STAFF)")
	sub := flag.Uint64("sub", 0, "customer or staff id")
	ttl := flag.Int("ttl", 60, "lifetime in minutes")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required env var: JWT_SECRET")
	}
	if *sub == 0 {
		log.Fatal("-sub is required")
	}
	if *role != middleware.RoleCustomer && *role != middleware.RoleStaff {
		log.Fatalf("unknown role %q", *role)
	}
	tok, err := utils.NewAccessToken(secret, *sub, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}

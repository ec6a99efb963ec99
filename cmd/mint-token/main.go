// Command mint-token issues bearer tokens for players and messaging
// gateways, signed with the server's AUTH_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"example.com/meme-sphinx/internal/auth"
	"example.com/meme-sphinx/internal/identity"
)

type env struct {
	Secret string        `envconfig:"AUTH_JWT_SECRET" default:"dev-secret-change-me"`
	TTL    time.Duration `envconfig:"AUTH_JWT_TTL" default:"24h"`
}

func main() {
	_ = godotenv.Load()

	var e env
	if err := envconfig.Process("", &e); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	role := flag.String("role", auth.RolePlayer, "player|gateway")
	address := flag.String("address", "", "player wallet address (role=player)")
	name := flag.String("name", "", "display name, or gateway name")
	ttl := flag.Duration("ttl", e.TTL, "token lifetime")
	flag.Parse()

	svc := auth.NewService([]byte(e.Secret))

	var (
		tok string
		err error
	)
	switch *role {
	case auth.RolePlayer:
		addr, ok := identity.Normalize(*address)
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid address %q\n", *address)
			os.Exit(2)
		}
		tok, err = svc.SignPlayer(addr, *name, *ttl)
	case auth.RoleGateway:
		if *name == "" {
			fmt.Fprintln(os.Stderr, "-name is required for gateway tokens")
			os.Exit(2)
		}
		tok, err = svc.SignGateway(*name, *ttl)
	default:
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

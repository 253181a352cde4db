// Command tokengen issues access tokens for local testing of the websocket
// endpoint. It signs with the same secret the server validates against.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/service/auth"
)

func main() {
	secret := flag.String("secret", os.Getenv("TASKPULSE_AUTH_JWT_SECRET"), "HMAC signing secret")
	lifetime := flag.Int("lifetime", 60, "token lifetime in minutes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: tokengen [flags] USER_ID...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(os.Stdout, *secret, *lifetime, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, secret string, lifetime int, args []string) error {
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: lifetime,
	})
	if err != nil {
		return err
	}

	for _, arg := range args {
		userID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || userID <= 0 {
			return fmt.Errorf("invalid user id %q", arg)
		}

		token, err := svc.GenerateToken(context.Background(), userID)
		if err != nil {
			return fmt.Errorf("failed to issue token for user %d: %w", userID, err)
		}
		fmt.Fprintf(out, "user %d: %s\n", userID, token)
	}
	return nil
}

// Command devtoken prints a signed access token for local development
// against an API running with the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/leadgenius/api/internal/auth"
	"github.com/octobees/leadgenius/api/internal/config"
)

func main() {
	subject := flag.String("sub", "00000000-0000-0000-0000-000000000001", "user id placed in the sub claim")
	email := flag.String("email", "dev@leadgenius.local", "email claim")
	role := flag.String("role", "admin", "application role stored in app_metadata")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, *ttl).GenerateToken(*subject, *email, *role)
	if err != nil {
		slog.Error("failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	authinfra "alphaflow-alerts/internal/infrastructure/auth"
	"alphaflow-alerts/internal/infrastructure/config"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	source := flag.String("source", "", "source label embedded in the webhook token")
	ttl := flag.Duration("ttl", 0, "token lifetime, 0 means no expiry")
	apiKey := flag.String("hash", "", "print a bcrypt hash for this API key instead of issuing a token")
	flag.Parse()

	if *apiKey != "" {
		hashed, err := authinfra.BcryptHasher{}.Hash(*apiKey)
		if err != nil {
			log.Fatalf("產生 API key 雜湊失敗: %v", err)
		}
		fmt.Println(hashed)
		return
	}

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("讀取組態失敗: %v", err)
	}
	if cfg.Auth.WebhookSecret == "" {
		log.Fatal("auth.webhook_secret 未設定，無法簽發 token")
	}
	if *source == "" {
		fmt.Fprintln(os.Stderr, "warning: -source is empty; alerts will use the request's source")
	}

	token, err := authinfra.NewWebhookVerifier(cfg.Auth.WebhookSecret, "").IssueToken(*source, *ttl)
	if err != nil {
		log.Fatalf("簽發 token 失敗: %v", err)
	}
	fmt.Println(token)
	if *ttl > 0 {
		fmt.Fprintf(os.Stderr, "expires at %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	}
}

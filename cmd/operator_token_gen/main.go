package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"runlab/stride/internal/auth"
	"runlab/stride/internal/config"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Security.OperatorSecret == "" {
		log.Fatal("security.operator_secret is not set")
	}

	token, err := auth.NewOperatorSigner([]byte(cfg.Security.OperatorSecret)).Issue(*subject, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println("Operator token:", token)
}

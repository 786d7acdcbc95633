package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"nova-ai/internal/engine"
	"nova-ai/internal/skills"
	"nova-ai/pkg/config"
	"nova-ai/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	registry := skills.NewRegistry()
	if err := skills.RegisterAll(registry); err != nil {
		log.Fatal("Failed to register skills", zap.Error(err))
	}

	eng := engine.New(registry)
	ctx := context.Background()

	fmt.Println("Nova engine started. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}
		if lower := strings.ToLower(command); lower == "exit" || lower == "quit" {
			break
		}

		result, err := eng.HandleCommand(ctx, command, cfg.GrantedPermissions)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		if result.Message != "" {
			fmt.Println(result.Message)
		}
		if result.Data != nil {
			fmt.Println(result.Data)
		}
	}

	fmt.Println("Goodbye!")
}

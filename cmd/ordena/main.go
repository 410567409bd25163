// Command ordena is an interactive chat client for the ordering
// assistant. By default it runs the full stack in-process; with
// -connect it talks to a running ordena-server over WebSocket.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ordena/ordena/internal/app"
	"github.com/ordena/ordena/internal/chat"
	"github.com/ordena/ordena/internal/config"
	"github.com/ordena/ordena/internal/wsapi"
)

func main() {
	connect := flag.String("connect", "", "WebSocket URL of a running server (e.g. ws://localhost:8080/ws)")
	flag.Parse()

	if *connect != "" {
		if err := runRemote(*connect); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}
	if err := runLocal(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runLocal() error {
	cfg := config.Load()
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	sessionID := chat.NewSessionID()
	fmt.Println("Sistema de pedidos y pagos (escribe 'exit' para salir)")
	fmt.Printf("Session: %s\n\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Your: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		switch strings.ToLower(query) {
		case "exit":
			return nil
		case "reset":
			application.Manager.Reset(sessionID)
			fmt.Println("Session cleared.")
			continue
		case "debug":
			printDebug(application, sessionID)
			continue
		case "db-status":
			printDBStatus(ctx, application)
			continue
		}

		reply, err := application.Manager.Run(ctx, sessionID, query)
		if err != nil {
			fmt.Printf("\nError: %v\n", err)
			continue
		}
		fmt.Printf("\nAgent: %s\n", reply)
	}
}

func printDebug(application *app.App, sessionID string) {
	info, ok := application.Manager.Inspect(sessionID)
	if !ok {
		fmt.Println("No session state yet.")
		return
	}
	fmt.Printf("Messages in context: %d\n", len(info.Messages))
	fmt.Printf("Turn count: %d\n", info.TurnCount)
	fmt.Printf("Active handler: %s\n", info.ActiveHandler)
	items := info.Order
	if len(items) == 0 {
		fmt.Println("Order items: none")
		return
	}
	fmt.Println("Order items:")
	for _, item := range items {
		if item.UnitPrice != nil {
			fmt.Printf("  - %dx %s ($%.2f)\n", item.Quantity, item.Name, *item.UnitPrice)
		} else {
			fmt.Printf("  - %dx %s (price pending)\n", item.Quantity, item.Name)
		}
	}
}

func printDBStatus(ctx context.Context, application *app.App) {
	if err := application.Store.Probe(ctx); err != nil {
		fmt.Printf("Database: unreachable (%v)\n", err)
		return
	}
	products, err := application.Store.ListProducts(ctx)
	if err != nil {
		fmt.Printf("Database: connected, but could not list products (%v)\n", err)
		return
	}
	fmt.Printf("Database: connected, %d products\n", len(products))
}

func runRemote(url string) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Conectado a %s (escribe 'exit' para salir)\n\n", url)

	sessionID := ""
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Your: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			return nil
		}

		if err := conn.WriteJSON(wsapi.ChatMessage{SessionID: sessionID, Message: query}); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		var reply wsapi.ChatReply
		if err := conn.ReadJSON(&reply); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		sessionID = reply.SessionID
		fmt.Printf("\nAgent: %s\n", reply.Reply)
	}
}

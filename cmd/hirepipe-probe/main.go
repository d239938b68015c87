package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP streamable HTTP endpoint")
	token := flag.String("token", "", "bearer token to store through the login tool before probing")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "hirepipe-probe",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: *endpoint}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	listTools(ctx, session)

	if *token != "" {
		callTool(ctx, session, "login", map[string]any{"token": *token})
	}
	callTool(ctx, session, "dashboard_stats", map[string]any{})
	callTool(ctx, session, "list_candidates", map[string]any{"limit": 5})
	callTool(ctx, session, "list_jobs", map[string]any{"status": "open"})

	fmt.Println("\nProbe completed")
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTOOLS")
	resp, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		log.Printf("list tools failed: %v", err)
		return
	}
	for _, tool := range resp.Tools {
		fmt.Printf("- %s: %s\n", tool.Name, tool.Description)
	}
}

func callTool(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) {
	fmt.Printf("\nTEST: %s\n", name)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		log.Printf("%s failed: %v", name, err)
		return
	}

	printResult(result)
	if result.IsError {
		fmt.Printf("%s reported an error\n", name)
		return
	}
	fmt.Printf("%s passed\n", name)
}

func printResult(result *mcp.CallToolResult) {
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			fmt.Println(text.Text)
		}
	}
}

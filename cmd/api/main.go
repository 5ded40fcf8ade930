package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"mag7intel/pkg/api/chat"
	"mag7intel/pkg/core/agent"
	"mag7intel/pkg/core/prompt"
	"mag7intel/pkg/core/vectorstore/pinecone"
)

func main() {
	godotenv.Load()

	if err := prompt.Get().LoadFromDirectory("resources/prompts"); err != nil {
		log.Printf("Warning: failed to load prompt overrides: %v", err)
	}

	// Agent config
	var agentCfg agent.Config
	if data, err := os.ReadFile("config/models.yaml"); err == nil {
		yaml.Unmarshal(data, &agentCfg)
	}
	agentMgr, err := agent.NewManager(agentCfg)
	if err != nil {
		log.Fatalf("Failed to initialize agent manager: %v", err)
	}

	// Retrieval backend
	apiKey := os.Getenv("PINECONE_API_KEY")
	if apiKey == "" {
		log.Fatal("Error: PINECONE_API_KEY is not set.")
	}
	index, err := pinecone.New(pinecone.Config{APIKey: apiKey})
	if err != nil {
		log.Fatalf("Failed to create index client: %v", err)
	}

	qa := agent.New(agentMgr, index)
	chatHandler := chat.NewHandler(qa)

	http.HandleFunc("/api/chat", chatHandler.HandleChat)
	http.HandleFunc("/api/chat/history", chatHandler.HandleHistory)
	http.HandleFunc("/api/chat/clear", chatHandler.HandleClear)
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","provider":%q}`, agentMgr.ActiveProvider())
	})

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - POST /api/chat")
	fmt.Println("  - GET  /api/chat/history")
	fmt.Println("  - POST /api/chat/clear")
	fmt.Println("  - GET  /api/status")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"mag7intel/pkg/core/agent"
	"mag7intel/pkg/core/llm"
	"mag7intel/pkg/core/pipeline"
	"mag7intel/pkg/core/prompt"
	"mag7intel/pkg/core/vectorstore"
	"mag7intel/pkg/core/vectorstore/memory"
	"mag7intel/pkg/core/vectorstore/pinecone"
)

var exampleQuestions = []string{
	"What was Apple's total revenue in fiscal 2023?",
	"Compare R&D spending between Microsoft and Google.",
	"How has NVIDIA's data center revenue trended over the last three years?",
	"What risk factors does Tesla highlight around supply chain?",
	"How did Meta's operating margin change year over year?",
}

func main() {
	godotenv.Load()

	var (
		local   = flag.Bool("local", false, "search processed chunks on disk instead of the hosted index")
		dataDir = flag.String("data", "data/processed", "processed-chunk directory for -local mode")
	)
	flag.Parse()

	if err := prompt.Get().LoadFromDirectory("resources/prompts"); err != nil {
		log.Printf("Warning: failed to load prompt overrides: %v", err)
	}

	var agentCfg agent.Config
	if data, err := os.ReadFile("config/models.yaml"); err == nil {
		yaml.Unmarshal(data, &agentCfg)
	}
	agentMgr, err := agent.NewManager(agentCfg)
	if err != nil {
		log.Fatalf("Failed to initialize agent manager: %v", err)
	}

	ctx := context.Background()

	var index vectorstore.Store
	if *local {
		index, err = localStore(ctx, *dataDir)
		if err != nil {
			log.Fatalf("Failed to build local store: %v", err)
		}
	} else {
		apiKey := os.Getenv("PINECONE_API_KEY")
		if apiKey == "" {
			log.Fatal("Error: PINECONE_API_KEY is not set.")
		}
		index, err = pinecone.New(pinecone.Config{APIKey: apiKey})
		if err != nil {
			log.Fatalf("Failed to create index client: %v", err)
		}
	}

	qa := agent.New(agentMgr, index)
	conv := agent.NewConversation()

	fmt.Println("MAG7 Financial Intelligence CLI")
	fmt.Println("Type a question, or 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			fmt.Println("Bye.")
			return
		case "help":
			printHelp()
		case "examples":
			for _, q := range exampleQuestions {
				fmt.Println("  -", q)
			}
		case "history":
			for _, m := range conv.History() {
				fmt.Printf("  [%s] %s\n", m.Role, m.Content)
			}
		case "clear":
			conv.Clear()
			fmt.Println("Conversation cleared.")
		case "status":
			fmt.Printf("Provider: %s, conversation: %s, messages: %d\n",
				agentMgr.ActiveProvider(), conv.ID, len(conv.History()))
		default:
			ask(ctx, qa, conv, line)
		}
	}
}

// localStore loads a processing run's chunks into the in-process store,
// embedding through Gemini when GEMINI_API_KEY is set and falling back to
// keyword ranking otherwise.
func localStore(ctx context.Context, dir string) (vectorstore.Store, error) {
	chunks, err := pipeline.LoadAllChunks(dir)
	if err != nil {
		return nil, err
	}

	var embedder memory.Embedder
	if os.Getenv("GEMINI_API_KEY") != "" {
		e, err := llm.NewGeminiEmbedder(ctx, "")
		if err != nil {
			return nil, err
		}
		embedder = e
	} else {
		log.Println("Warning: GEMINI_API_KEY not set, ranking by keyword overlap.")
	}

	s := memory.New(embedder)
	records := make([]vectorstore.UploadRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, vectorstore.RecordFromChunk(c))
	}
	if _, err := s.Upsert(ctx, records); err != nil {
		return nil, err
	}
	fmt.Printf("Local mode: %d chunks loaded from %s\n", len(records), dir)
	return s, nil
}

func ask(ctx context.Context, qa *agent.Agent, conv *agent.Conversation, question string) {
	answer, err := qa.Ask(ctx, conv, question)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("\n%s\n", answer.Answer)
	fmt.Printf("\n(confidence %.2f, %s)\n", answer.Confidence, answer.Category)
	if len(answer.Sources) > 0 {
		fmt.Println("Sources:")
		for _, s := range answer.Sources {
			fmt.Printf("  - %s %s %s [%s]\n", s.Company, s.FormType, s.FilingDate, s.Section)
		}
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  <question>  ask about the indexed filings")
	fmt.Println("  examples    show sample questions")
	fmt.Println("  history     show retained conversation turns")
	fmt.Println("  clear       reset the conversation")
	fmt.Println("  status      show provider and conversation state")
	fmt.Println("  quit        exit")
}

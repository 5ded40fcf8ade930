package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"mag7intel/pkg/core/chunker"
	"mag7intel/pkg/core/ingest"
	"mag7intel/pkg/core/pipeline"
	"mag7intel/pkg/core/store"
	"mag7intel/pkg/core/vectorstore"
	"mag7intel/pkg/core/vectorstore/pinecone"
	"mag7intel/pkg/models"
)

// PipelineConfig is the config/pipeline.yaml schema.
type PipelineConfig struct {
	Ingest struct {
		RawDir    string   `yaml:"raw_dir"`
		UserAgent string   `yaml:"user_agent"`
		StartDate string   `yaml:"start_date"`
		EndDate   string   `yaml:"end_date"`
		Tickers   []string `yaml:"tickers"`
	} `yaml:"ingest"`
	Processing struct {
		OutputDir  string `yaml:"output_dir"`
		TargetSize int    `yaml:"target_size"`
		MinSize    int    `yaml:"min_size"`
		Workers    int    `yaml:"workers"`
	} `yaml:"processing"`
	Pinecone struct {
		IndexName string `yaml:"index_name"`
		Namespace string `yaml:"namespace"`
	} `yaml:"pinecone"`
}

func loadConfig(path string) PipelineConfig {
	var cfg PipelineConfig
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: config %s not found, using defaults", path)
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}

	if cfg.Ingest.RawDir == "" {
		cfg.Ingest.RawDir = "data/raw"
	}
	if cfg.Processing.OutputDir == "" {
		cfg.Processing.OutputDir = "data/processed"
	}
	return cfg
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		configPath = flag.String("config", "config/pipeline.yaml", "path to pipeline config")
		doFetch    = flag.Bool("fetch", false, "download filings from SEC EDGAR")
		doProcess  = flag.Bool("process", false, "normalize and chunk downloaded filings")
		doUpload   = flag.Bool("upload", false, "upload processed chunks to the vector index")
		tickers    = flag.String("tickers", "", "comma-separated ticker subset (default: all covered)")
	)
	flag.Parse()

	if !*doFetch && !*doProcess && !*doUpload {
		fmt.Println("Usage: pipeline [-fetch] [-process] [-upload]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	ctx := context.Background()

	fmt.Println("MAG7 Filing Pipeline Starting...")

	if *doFetch {
		runFetch(ctx, cfg, *tickers)
	}
	if *doProcess {
		runProcess(ctx, cfg)
	}
	if *doUpload {
		runUpload(ctx, cfg)
	}

	fmt.Println("[Done] Pipeline complete.")
}

func runFetch(ctx context.Context, cfg PipelineConfig, tickerFlag string) {
	fmt.Println("\n[1] ACQUISITION")

	downloader := ingest.NewDownloader(cfg.Ingest.RawDir, cfg.Ingest.UserAgent)
	if cfg.Ingest.StartDate != "" {
		downloader.Options.StartDate = cfg.Ingest.StartDate
	}
	if cfg.Ingest.EndDate != "" {
		downloader.Options.EndDate = cfg.Ingest.EndDate
	}

	selected := cfg.Ingest.Tickers
	if tickerFlag != "" {
		selected = strings.Split(strings.ToUpper(tickerFlag), ",")
	}

	summary, err := downloader.DownloadAll(ctx, selected)
	if err != nil {
		log.Fatalf("Acquisition failed: %v", err)
	}
	fmt.Printf("Downloaded %d/%d filings (%d failed)\n", summary.Downloaded, summary.TotalFilings, summary.Failed)
}

func runProcess(ctx context.Context, cfg PipelineConfig) {
	fmt.Println("\n[2] PROCESSING")

	chunkCfg := chunker.DefaultConfig()
	if cfg.Processing.TargetSize > 0 {
		chunkCfg.TargetSize = cfg.Processing.TargetSize
	}
	if cfg.Processing.MinSize > 0 {
		chunkCfg.MinSize = cfg.Processing.MinSize
	}

	processor := pipeline.NewProcessor(cfg.Ingest.RawDir, cfg.Processing.OutputDir, chunkCfg, cfg.Processing.Workers)
	summary, docs, err := processor.ProcessAll()
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	fmt.Printf("Processed %d/%d documents (%d failed)\n", summary.Successful, summary.TotalFiles, summary.Failed)

	persistRun(ctx, summary, docs)
}

// persistRun records the processed documents and the run summary in Postgres
// when DATABASE_URL is set.
func persistRun(ctx context.Context, summary models.RunSummary, docs []models.ProcessedDocument) {
	if os.Getenv("DATABASE_URL") == "" {
		return
	}
	if err := store.InitDB(ctx); err != nil {
		log.Printf("Warning: database unavailable, skipping persistence: %v", err)
		return
	}
	defer store.Close()

	repo := store.NewChunkRepo(store.GetPool())
	repo.SaveDocuments(ctx, docs)
	if err := repo.SaveRunSummary(ctx, summary); err != nil {
		log.Printf("Warning: failed to persist run summary: %v", err)
	}
}

func runUpload(ctx context.Context, cfg PipelineConfig) {
	fmt.Println("\n[3] UPLOAD")

	apiKey := os.Getenv("PINECONE_API_KEY")
	if apiKey == "" {
		log.Fatal("Error: PINECONE_API_KEY is not set.")
	}

	client, err := pinecone.New(pinecone.Config{
		APIKey:    apiKey,
		IndexName: cfg.Pinecone.IndexName,
		Namespace: cfg.Pinecone.Namespace,
	})
	if err != nil {
		log.Fatalf("Failed to create index client: %v", err)
	}
	if err := client.EnsureIndex(ctx); err != nil {
		log.Fatalf("Failed to ensure index: %v", err)
	}

	chunks, err := pipeline.LoadAllChunks(cfg.Processing.OutputDir)
	if err != nil {
		log.Fatalf("Failed to load chunks: %v", err)
	}

	records := make([]vectorstore.UploadRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, vectorstore.RecordFromChunk(c))
	}

	stats, err := client.Upsert(ctx, records)
	if err != nil {
		log.Fatalf("Upload failed after %d records: %v", stats.Uploaded, err)
	}
	fmt.Printf("Uploaded %d records in %d batches (%d skipped)\n", stats.Uploaded, stats.Batches, stats.Skipped)
}

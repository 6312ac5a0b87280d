// Package main is the Shirabe CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/cli"
	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/ingest"
	"github.com/hyperjump/shirabe/internal/keyword"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/retriever"
	"github.com/hyperjump/shirabe/internal/server"
	"github.com/hyperjump/shirabe/internal/storage"
	"github.com/hyperjump/shirabe/internal/vector"
	"github.com/hyperjump/shirabe/internal/watcher"
	"github.com/hyperjump/shirabe/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/shirabe/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence, so running from the project dir
// uses the project's config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "query":
		runQuery()
	case "watch":
		runWatch()
	case "remove":
		runRemove()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("shirabe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components holds initialized services.
type components struct {
	Storage   storage.Storage
	Embedder  embedding.Embedder
	Keyword   keyword.Index
	Pipeline  *ingest.Pipeline
	Retriever *retriever.Retriever
}

func (c *components) Close() {
	if c.Retriever != nil {
		if store := c.Retriever.Store(); store != nil {
			_ = store.Close()
		}
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		// The ONNX runtime or model file may be absent. The hash embedder
		// keeps the pipeline usable, at the cost of retrieval quality.
		logger.Warn("embedder unavailable, falling back to hash embedder",
			zap.String("model_id", cfg.Embedding.ModelID),
			zap.Error(err))
		embedder = embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	}

	var kw keyword.Index
	if cfg.Pipeline.KeywordEnabled {
		kw, err = keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
		}
	}

	pipeline, err := ingest.NewPipeline(cfg, embedder, store, kw, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	vstore, err := vector.OpenStore(cfg.Storage.IndexDir, embedder.ModelID(), embedder.Dimensions())
	if err != nil {
		logger.Info("no published index artifact, starting empty",
			zap.String("dir", cfg.Storage.IndexDir),
			zap.Error(err))
		vstore, err = vector.NewStore(cfg.Pipeline.IndexBackend, embedder.ModelID(), embedder.Dimensions())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	ret := retriever.New(cfg, embedder, vstore, kw, logger)

	return &components{
		Storage:   store,
		Embedder:  embedder,
		Keyword:   kw,
		Pipeline:  pipeline,
		Retriever: ret,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = newFragmentWatcher(cfg, comps, logger)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(comps.Retriever, comps.Pipeline, comps.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// newFragmentWatcher wires watched directories into the pipeline: JSONL files
// ingest as fragment batches, everything else as a single local document.
func newFragmentWatcher(cfg *config.Config, comps *components, logger *zap.Logger) *watcher.Watcher {
	extractor := extract.NewExtractor()
	onIngest := func(path string) {
		fragments, err := fragmentsFromPath(extractor, path, logger)
		if err != nil {
			logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			return
		}
		if len(fragments) == 0 {
			return
		}
		store, report, err := comps.Pipeline.Ingest(context.Background(), fragments)
		if err != nil {
			logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			return
		}
		comps.Retriever.ReplaceStore(store)
		logger.Info("watch ingested",
			zap.String("path", path),
			zap.Int("chunks_indexed", report.ChunksIndexed))
	}
	onRemove := func(path string) {
		if strings.EqualFold(filepath.Ext(path), ".jsonl") {
			// Fragment batches have per-record source IDs; removing the file
			// does not retract what it delivered.
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		store, err := comps.Pipeline.Remove(context.Background(), ingest.FileSourceID(abs))
		if err != nil {
			logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
			return
		}
		comps.Retriever.ReplaceStore(store)
	}
	opts := []watcher.Option{}
	if cfg.Debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	return watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		onIngest, onRemove, opts...)
}

// fragmentsFromPath turns a path into fragments: JSONL files parse as batches,
// anything else becomes one local-file fragment.
func fragmentsFromPath(extractor *extract.Extractor, path string, logger *zap.Logger) ([]models.Fragment, error) {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return ingest.ReadFragmentsFile(path, logger)
	}
	frag, err := ingest.FileFragment(extractor, path)
	if err != nil {
		return nil, err
	}
	return []models.Fragment{*frag}, nil
}

// runWatch runs the watcher as a foreground ingest daemon, without the HTTP
// server. Directories given as arguments override the configured watch roots.
func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	noSync := fs.Bool("no-sync", false, "skip ingesting files already present at startup")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		cfg.Watch.Directories = fs.Args()
	}
	if len(cfg.Watch.Directories) == 0 {
		fmt.Println("Usage: shirabe watch [flags] [<directory>...] (or set watch.directories in config)")
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchSvc := newFragmentWatcher(cfg, comps, logger)
	if err := watchSvc.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer watchSvc.Stop()
	if !*noSync {
		watchSvc.SyncExistingFiles()
	}
	logger.Info("Watching for fragments",
		zap.Strings("directories", watchSvc.Directories()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: shirabe ingest [flags] <file-or-directory>...")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	extractor := extract.NewExtractor()
	var fragments []models.Fragment
	for _, arg := range fs.Args() {
		collected, err := collectFragments(extractor, arg, cfg.Watch.Extensions, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", arg, err)
			os.Exit(1)
		}
		fragments = append(fragments, collected...)
	}

	store, report, err := comps.Pipeline.Ingest(context.Background(), fragments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}
	if err := cli.WriteIngestReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// collectFragments gathers fragments from a file or directory. Directories
// are walked recursively with the configured extension filter.
func collectFragments(extractor *extract.Extractor, path string, extensions []string, logger *zap.Logger) ([]models.Fragment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return fragmentsFromPath(extractor, path, logger)
	}
	var fragments []models.Fragment
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !matchExtension(p, extensions) {
			return nil
		}
		collected, err := fragmentsFromPath(extractor, p, logger)
		if err != nil {
			logger.Warn("skipping file", zap.String("path", p), zap.Error(err))
			return nil
		}
		fragments = append(fragments, collected...)
		return nil
	})
	return fragments, err
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// queryArgsReorder moves flags that appear after the query text to the front
// so flag.Parse sees them; flag parsing stops at the first non-flag argument.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runQuery() {
	args := queryArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = query the published artifact directly)")
	topK := fs.Int("k", 0, "number of chunks to return (0 = configured default)")
	keywordWeight := fs.Float64("keyword-weight", 0, "keyword score weight for hybrid retrieval")
	semanticWeight := fs.Float64("semantic-weight", 0, "semantic score weight (default 1.0)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: shirabe query [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryStr == "" {
		fmt.Println("Usage: shirabe query [flags] <query>")
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	query := models.RetrieveQuery{
		Query:          queryStr,
		TopK:           *topK,
		KeywordWeight:  *keywordWeight,
		SemanticWeight: *semanticWeight,
	}

	if *serverURL != "" {
		response, err := retrieveViaHTTP(*serverURL, &query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteRetrieveResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	response, err := comps.Retriever.Retrieve(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRetrieveResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func retrieveViaHTTP(serverURL string, query *models.RetrieveQuery) (*models.RetrieveResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/retrieve", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.RetrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: shirabe remove [flags] <source-id>")
		os.Exit(1)
	}
	sourceID := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	store, err := comps.Pipeline.Remove(context.Background(), sourceID)
	if err != nil {
		fmt.Printf("Removal failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	fmt.Printf("Source removed: %s\n", sourceID)
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Documents      int64                  `json:"documents"`
	Chunks         int64                  `json:"chunks"`
	IndexSize      int                    `json:"index_size"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		comps, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer comps.Close()
		ctx := context.Background()
		docCount, err := comps.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		chunkCount, err := comps.Storage.CountChunks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
			os.Exit(1)
		}
		vstore := comps.Retriever.Store()
		status = statusResponse{
			Documents: docCount,
			Chunks:    chunkCount,
			IndexSize: vstore.Size(),
			Config: map[string]interface{}{
				"index_backend":        vstore.Backend(),
				"model_id":             vstore.ModelID(),
				"embedding_dimensions": vstore.Dimensions(),
				"database_path":        cfg.Storage.DatabasePath,
				"index_dir":            cfg.Storage.IndexDir,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.IndexDir, cfg.Storage.KeywordIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:         %d\n", status.Documents)
		fmt.Printf("chunks:            %d\n", status.Chunks)
		fmt.Printf("index_size:        %d\n", status.IndexSize)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:  %d\n", *status.DiskUsageBytes)
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"index_backend", "model_id", "embedding_dimensions", "database_path", "index_dir"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-20s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`shirabe - documentation ingestion and retrieval pipeline

Usage:
  shirabe server [flags]            Start the HTTP server
  shirabe ingest [flags] <path>...  Ingest fragment files or documents
  shirabe query [flags] <query>     Retrieve top-k chunks
  shirabe watch [flags] [<dir>...]  Watch directories and ingest on change
  shirabe remove [flags] <id>       Remove a source and republish
  shirabe status [flags]            Show corpus and index status
  shirabe version                   Show version
  shirabe help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/shirabe/config.yaml)
  --debug            Enable debug logging

Ingest Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Query Flags:
  --config string            Config file path
  --server string            Server URL (empty = query the published artifact directly)
  --k int                    Number of chunks to return (0 = configured default)
  --keyword-weight float     Keyword score weight for hybrid retrieval
  --semantic-weight float    Semantic score weight (default 1.0)
  --output string            Output format: text or json (default: text)

Watch Flags:
  --config string    Config file path
  --debug            Enable debug logging
  --no-sync          Skip ingesting files already present at startup

Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct mode.
  --output string    Output format: text or json (default: text)

Examples:
  shirabe server
  shirabe ingest fragments.jsonl
  shirabe ingest ./docs
  shirabe query "how do I restart the agent"
  shirabe query --k 3 --output json "webhook retries"
  shirabe remove docs-page-42
  shirabe status --output json`)
}

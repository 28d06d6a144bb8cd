// Package main is the rwascore CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/rwascore/internal/cli"
	"github.com/hyperjump/rwascore/internal/config"
	"github.com/hyperjump/rwascore/internal/extract"
	"github.com/hyperjump/rwascore/internal/inbox"
	"github.com/hyperjump/rwascore/internal/ingest"
	"github.com/hyperjump/rwascore/internal/metrics"
	"github.com/hyperjump/rwascore/internal/model"
	"github.com/hyperjump/rwascore/internal/models"
	"github.com/hyperjump/rwascore/internal/scoring"
	"github.com/hyperjump/rwascore/internal/server"
	"github.com/hyperjump/rwascore/internal/storage"
	"github.com/hyperjump/rwascore/pkg/utils"
)

var version = "dev"

const defaultServerURL = "http://localhost:8000"

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// loadConfig loads config from path. When path is the default and it does not exist, it falls
// back to config.yaml in the current directory, then to built-in defaults.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path != config.DefaultPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	candidates := []string{path}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append([]string{filepath.Join(cwd, "config.yaml")}, candidates...)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			cfg, err := config.Load(c)
			if err != nil {
				return nil, "", err
			}
			return cfg, c, nil
		}
	}
	return config.Default(), "", nil
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
	case "score":
		runScore()
	case "upload":
		runUpload()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("rwascore version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || *debug
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
		zap.String("default_strategy", cfg.Scoring.DefaultStrategy),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inboxDone := make(chan struct{})
	if len(cfg.Inbox.Directories) > 0 {
		in := inbox.New(cfg.Inbox.Directories, cfg.Inbox.Extensions, components.Ingest,
			inbox.WithLogger(logger),
			inbox.WithRecursive(cfg.Inbox.RecursiveOrDefault()),
			inbox.WithDebounce(time.Duration(cfg.Inbox.DebounceMS)*time.Millisecond),
		)
		go func() {
			defer close(inboxDone)
			if err := in.Run(ctx); err != nil {
				logger.Error("inbox stopped", zap.Error(err))
			}
		}()
	} else {
		close(inboxDone)
	}

	opts := []server.Option{server.WithMetrics(components.Metrics), server.WithVersion(version)}
	if components.Provider != nil {
		opts = append(opts, server.WithModelState(components.Provider))
	}
	srv := server.NewServer(components.Registry, components.Ingest, components.Store, cfg, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	<-inboxDone
}

// argsReorder moves any flags (and their values) that appear after the positional arguments
// to the front so that flag.Parse() sees them. "rwascore score deed.pdf -strategy model"
// would otherwise leave -strategy unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
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

func printScoreUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: rwascore score [flags] [file | -]\n\n")
	fmt.Fprintf(fs.Output(), "Scores a document file, stdin (-), --text, or an uploaded --asset.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  rwascore score deed.pdf
  rwascore score --strategy model --server http://localhost:8000 deed.pdf
  rwascore score --profile weighted --metadata '{"audited": true}' --text "Property deed, signed 2021"
  cat deed.txt | rwascore score --output json -
`)
}

func runScore() {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path (local scoring)")
	serverURL := fs.String("server", "", "server URL; empty scores locally")
	strategy := fs.String("strategy", "", "scoring strategy: heuristic or model (default from config)")
	profile := fs.String("profile", "", "heuristic profile: points or weighted (default from config)")
	metadata := fs.String("metadata", "", "metadata as a JSON object")
	text := fs.String("text", "", "raw text to score instead of a file")
	assetID := fs.String("asset", "", "score an uploaded asset by ID")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printScoreUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req := &models.ScoreRequest{
		AssetID:  *assetID,
		Strategy: *strategy,
		Profile:  *profile,
	}
	if *metadata != "" {
		req.Metadata = json.RawMessage(*metadata)
	}

	var cfg *config.Config
	if *serverURL == "" {
		if cfg, _, err = loadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if req.AssetID == "" {
		maxBytes := int64(0)
		if cfg != nil {
			maxBytes = cfg.Server.MaxUploadBytes
		}
		req.RawText, err = readInput(fs.Args(), *text, os.Stdin, extract.NewExtractor(maxBytes))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read input failed: %v\n", err)
			printScoreUsage(fs)
			os.Exit(1)
		}
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
		os.Exit(1)
	}

	var resp *models.ScoreResponse
	if *serverURL != "" {
		resp, err = postScore(*serverURL, req)
	} else {
		resp, err = scoreLocally(cfg, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Score failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteScore(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// readInput returns the text to score: text when set, stdin for "-", else the extracted
// contents of the file argument. An extraction failure yields empty text with a warning.
func readInput(args []string, text string, stdin io.Reader, ex *extract.Extractor) (string, error) {
	if text != "" {
		return text, nil
	}
	if len(args) < 1 {
		return "", errors.New("no input: pass a file, -, --text, or --asset")
	}
	if args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return extract.Normalize(string(b)), nil
	}
	res := ex.Text(args[0])
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "warning: text extraction failed for %s: %v\n", args[0], res.Err)
	}
	return res.Text, nil
}

// scoreLocally scores req with components built from cfg. Asset lookups read the local catalog.
func scoreLocally(cfg *config.Config, req *models.ScoreRequest) (*models.ScoreResponse, error) {
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	if req.AssetID == "" {
		registry, provider, err := buildRegistry(cfg, logger, nil)
		if err != nil {
			return nil, err
		}
		if provider != nil {
			defer provider.Close()
		}
		return scoreWith(ctx, registry, req, req.RawText)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	asset, err := components.Ingest.Asset(ctx, req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", req.AssetID, err)
	}
	return scoreWith(ctx, components.Registry, req, asset.Content)
}

// scoreWith resolves the requested scorer and scores text with it.
func scoreWith(ctx context.Context, registry *scoring.Registry, req *models.ScoreRequest, text string) (*models.ScoreResponse, error) {
	scorer, err := registry.Resolve(req.Strategy, req.Profile)
	if err != nil {
		return nil, err
	}
	meta, _ := req.MetadataMap()
	res, err := scorer.Score(ctx, text, meta)
	if err != nil {
		return nil, err
	}
	return models.NewScoreResponse(res, scorer, req.AssetID), nil
}

func postScore(serverURL string, req *models.ScoreRequest) (*models.ScoreResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Post(strings.TrimRight(serverURL, "/")+"/score", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	var out models.ScoreResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path (local catalog)")
	serverURL := fs.String("server", defaultServerURL, "server URL; empty writes to the local catalog")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: rwascore upload [flags] <file>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	path := fs.Arg(0)

	var resp *models.UploadResponse
	if *serverURL != "" {
		resp, err = postUpload(*serverURL, path)
	} else {
		resp, err = uploadLocally(*configPath, path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteUpload(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func postUpload(serverURL, path string) (*models.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := httpClient.Post(strings.TrimRight(serverURL, "/")+"/upload", mw.FormDataContentType(), pr)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	var out models.UploadResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func uploadLocally(configPath, path string) (*models.UploadResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	asset, err := components.Ingest.Upload(context.Background(), filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	return &models.UploadResponse{
		AssetID:       asset.ID,
		Filename:      asset.Filename,
		ExtractedText: utils.TruncateRunes(asset.Content, 1000),
		Format:        asset.Format,
		ExtractError:  asset.ExtractError,
	}, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path (local catalog)")
	serverURL := fs.String("server", defaultServerURL, "server URL; empty reads the local catalog")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var status *models.Status
	if *serverURL != "" {
		status, err = getStatus(*serverURL)
	} else {
		status, err = localStatus(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func getStatus(serverURL string) (*models.Status, error) {
	resp, err := httpClient.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	var s models.Status
	if err := decodeResponse(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func localStatus(configPath string) (*models.Status, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	count, err := store.CountAssets(context.Background())
	if err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}
	status := &models.Status{
		Assets:          count,
		DefaultStrategy: cfg.Scoring.DefaultStrategy,
		ModelConfigured: cfg.Model.EnabledOrDefault(),
		Version:         version,
	}
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.UploadsDir); err == nil {
		status.DiskUsageBytes = diskBytes
	}
	return status, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "where to write the config file")
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(os.Args[2:])

	if _, err := os.Stat(*configPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists; use --force to overwrite\n", *configPath)
		os.Exit(1)
	}
	if err := config.Save(*configPath, config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Write config failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *configPath)
}

// decodeResponse decodes a 200 response into out, or turns an error body into an error.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds the long-lived services shared by the server and local commands.
type Components struct {
	Store    *storage.SQLiteStore
	Ingest   *ingest.Service
	Metrics  *metrics.Metrics
	Provider *model.Provider
	Registry *scoring.Registry
}

func (c *Components) Close() {
	if c.Provider != nil {
		_ = c.Provider.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	blobs, err := storage.NewBlobStore(cfg.Storage.UploadsDir)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize uploads: %w", err)
	}
	m := metrics.New()
	svc := ingest.NewService(store, blobs, extract.NewExtractor(cfg.Server.MaxUploadBytes),
		ingest.WithLogger(logger),
		ingest.WithMetrics(m),
		ingest.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
	)
	registry, provider, err := buildRegistry(cfg, logger, m)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &Components{
		Store:    store,
		Ingest:   svc,
		Metrics:  m,
		Provider: provider,
		Registry: registry,
	}, nil
}

// buildRegistry wires the heuristic scorer and, when enabled, the lazily loaded model scorer.
// Model handles are not loaded until the first model-strategy request.
func buildRegistry(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*scoring.Registry, *model.Provider, error) {
	heuristic, err := scoring.NewHeuristicScorer(&cfg.Scoring.Heuristic, scoring.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize heuristic scorer: %w", err)
	}
	var (
		provider    *model.Provider
		modelScorer scoring.Scorer
	)
	if cfg.Model.EnabledOrDefault() {
		provider = model.NewProvider(
			model.NewLoader(cfg.Embedding, cfg.Model.Classifier),
			model.WithLogger(logger),
			model.WithLoadObserver(m.ObserveModelLoad),
		)
		modelScorer = scoring.NewModelScorer(provider, &cfg.Model.Scorer, scoring.WithLogger(logger))
	}
	registry, err := scoring.NewRegistry(heuristic, modelScorer, cfg.Scoring.DefaultStrategy)
	if err != nil {
		return nil, nil, err
	}
	return registry, provider, nil
}

func printUsage() {
	fmt.Println(`rwascore - Real-world asset document scoring

Usage:
  rwascore server [flags]            Start the HTTP server
  rwascore score [flags] [file | -]  Score a document
  rwascore upload [flags] <file>     Upload a document and extract its text
  rwascore status [flags]            Show catalog and model status
  rwascore init [flags]              Write a default config file
  rwascore version                   Show version
  rwascore help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/rwascore/config.yaml)
  --debug            Enable debug logging

Score Flags:
  --server string    Server URL (default: empty, score locally)
  --strategy string  heuristic or model (default from config)
  --profile string   points or weighted (heuristic only)
  --metadata string  Metadata JSON object, e.g. '{"verified_offchain": true}'
  --text string      Score raw text instead of a file
  --asset string     Score an uploaded asset by ID
  --output string    Output format: text or json (default: text)

Upload / Status Flags:
  --server string    Server URL (default: http://localhost:8000). Use --server "" for the local catalog.
  --output string    Output format: text or json (default: text)

Examples:
  rwascore server
  rwascore score deed.pdf
  rwascore score --strategy model --output json deed.pdf
  rwascore upload deed.pdf
  rwascore score --server http://localhost:8000 --asset <asset_id>
  rwascore status --output json`)
}

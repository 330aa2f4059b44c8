// Package main is the Omiai CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/omiai/internal/artifact"
	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/cli"
	"github.com/hyperjump/omiai/internal/config"
	"github.com/hyperjump/omiai/internal/engine"
	"github.com/hyperjump/omiai/internal/ingest"
	"github.com/hyperjump/omiai/internal/jobsearch"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/recommend"
	"github.com/hyperjump/omiai/internal/server"
	"github.com/hyperjump/omiai/internal/skills"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/trainer"
	"github.com/hyperjump/omiai/internal/watcher"
	"github.com/hyperjump/omiai/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/omiai/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "omiai server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
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
	case "recommend":
		runRecommend()
	case "train":
		runTrain()
	case "import":
		runImport()
	case "jobs":
		runJobs()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("omiai version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components bundles everything a direct (non-HTTP) command needs.
type components struct {
	Storage   storage.Storage
	Artifacts *artifact.Store
	JobIndex  *jobsearch.Index
	Trainer   *trainer.Trainer
	Engine    *engine.Engine
}

func (c *components) Close() {
	if c.JobIndex != nil {
		_ = c.JobIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	artifacts, err := artifact.NewStore(cfg.Storage.ArtifactDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	jobIndex, err := jobsearch.NewIndex(cfg.Storage.JobIndexPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open job index: %w", err)
	}

	tagger := skills.NewTagger(cfg.Vocabulary)
	tr := trainer.New(store, artifacts, cfg.Training.HiredStatuses,
		trainer.WithLogger(logger),
		trainer.WithClassifierOptions(&classifier.Options{
			Epochs:       cfg.Training.Epochs,
			LearningRate: cfg.Training.LearningRate,
		}),
	)
	eng := engine.New(store, recommend.New(tagger), tr, artifacts, &cfg.Recommend, logger)
	return &components{
		Storage:   store,
		Artifacts: artifacts,
		JobIndex:  jobIndex,
		Trainer:   tr,
		Engine:    eng,
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
		zap.Bool("debug", debugMode),
	)

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	// Pick up artifacts from an earlier training run, if any.
	if err := comps.Engine.Reload(); err != nil {
		logger.Fatal("Failed to load artifacts", zap.Error(err))
	}
	if err := syncJobIndex(context.Background(), comps); err != nil {
		logger.Fatal("Failed to sync job index", zap.Error(err))
	}

	// Reload artifacts when an external "omiai train" swaps the store pointer.
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	artifactWatch := watcher.New(comps.Artifacts.PointerPath(), func() {
		if err := comps.Engine.Reload(); err != nil {
			logger.Warn("artifact reload failed", zap.Error(err))
		}
	}, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := artifactWatch.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start artifact watcher", zap.Error(err))
	}

	srv := server.NewServer(comps.Engine, comps.JobIndex, comps.Storage, cfg, logger)
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
	artifactWatch.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// syncJobIndex reindexes all stored postings so keyword search reflects the
// latest imports.
func syncJobIndex(ctx context.Context, comps *components) error {
	jobs, err := comps.Storage.ListJobs(ctx, 0, int(^uint(0)>>1))
	if err != nil {
		return err
	}
	return comps.JobIndex.IndexJobs(ctx, jobs)
}

// splitSkills parses a comma-separated -skills flag value.
func splitSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	skillsFlag := fs.String("skills", "", "comma-separated required skills (default: derived from the job's competencies)")
	topN := fs.Int("top", 0, "number of candidates to return (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: omiai recommend [flags] <job-id>")
		os.Exit(1)
	}
	jobID := fs.Arg(0)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	query := &models.RecommendQuery{
		JobID:  jobID,
		Skills: splitSkills(*skillsFlag),
		TopN:   *topN,
	}

	if *serverURL != "" {
		// Use HTTP API when the server is running (avoids SQLite/Bleve lock conflict).
		response, err := recommendViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
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

	if err := comps.Engine.Reload(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load artifacts: %v\n", err)
		os.Exit(1)
	}
	response, err := comps.Engine.Recommend(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func recommendViaHTTP(serverURL string, query *models.RecommendQuery) (*models.RecommendResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/recommend", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runTrain() {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = train directly against storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *serverURL != "" {
		resp, err := http.Post(*serverURL+"/api/v1/train", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Train failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Train failed: server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var report models.TrainReport
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			fmt.Fprintf(os.Stderr, "Decode response failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteTrainReport(os.Stdout, &report, format); err != nil {
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

	report, err := comps.Trainer.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteTrainReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	jobsPath := fs.String("jobs", "", "jobs table (.json or .xlsx)")
	applicantsPath := fs.String("applicants", "", "applicants table (.json or .xlsx)")
	prospectsPath := fs.String("prospects", "", "prospects table (.json or .xlsx)")
	resumePath := fs.String("resume", "", "resume document to attach (requires -candidate)")
	candidateID := fs.String("candidate", "", "candidate id for -resume")
	_ = fs.Parse(os.Args[2:])

	if *jobsPath == "" && *applicantsPath == "" && *prospectsPath == "" && *resumePath == "" {
		fmt.Println("Usage: omiai import [-jobs file] [-applicants file] [-prospects file] [-resume file -candidate id]")
		os.Exit(1)
	}
	if *resumePath != "" && *candidateID == "" {
		fmt.Println("-resume requires -candidate")
		os.Exit(1)
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

	importer := ingest.NewImporter(comps.Storage, ingest.WithLogger(logger))
	ctx := context.Background()

	if *jobsPath != "" {
		n, err := importer.ImportJobs(ctx, *jobsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import jobs failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d job(s)\n", n)
		if err := syncJobIndex(ctx, comps); err != nil {
			fmt.Fprintf(os.Stderr, "Job index sync failed: %v\n", err)
			os.Exit(1)
		}
	}
	if *applicantsPath != "" {
		n, err := importer.ImportApplicants(ctx, *applicantsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import applicants failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d applicant(s)\n", n)
	}
	if *prospectsPath != "" {
		n, err := importer.ImportProspects(ctx, *prospectsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import prospects failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d prospect(s)\n", n)
	}
	if *resumePath != "" {
		if err := importer.AttachResume(ctx, *candidateID, *resumePath); err != nil {
			fmt.Fprintf(os.Stderr, "Attach resume failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Resume attached to %s\n", *candidateID)
	}
}

func runJobs() {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 10, "number of results")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: omiai jobs [flags] <query>")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))

	u := fmt.Sprintf("%s/api/v1/jobs?q=%s&limit=%d", *serverURL, url.QueryEscape(query), *limit)
	resp, err := http.Get(u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Job search failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Job search failed: server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		Results []*jobsearch.Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Decode response failed: %v\n", err)
		os.Exit(1)
	}
	if len(out.Results) == 0 {
		fmt.Println("No jobs matched.")
		return
	}
	for _, r := range out.Results {
		fmt.Printf("%-12s %.4f  %s\n", r.JobID, r.Score, cli.Truncate(r.Title, 60))
	}
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Jobs             int64  `json:"jobs"`
	Applicants       int64  `json:"applicants"`
	Prospects        int64  `json:"prospects"`
	ModelLoaded      bool   `json:"model_loaded"`
	ModelFingerprint string `json:"model_fingerprint,omitempty"`
	IndexedJobs      uint64 `json:"indexed_jobs,omitempty"`
	DiskUsageBytes   *int64 `json:"disk_usage_bytes,omitempty"`
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
		if err := comps.Engine.Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load artifacts: %v\n", err)
			os.Exit(1)
		}
		ctx := context.Background()
		jobCount, err := comps.Storage.CountJobs(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count jobs failed: %v\n", err)
			os.Exit(1)
		}
		applicantCount, err := comps.Storage.CountApplicants(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count applicants failed: %v\n", err)
			os.Exit(1)
		}
		prospectCount, err := comps.Storage.CountProspects(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count prospects failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Jobs:             jobCount,
			Applicants:       applicantCount,
			Prospects:        prospectCount,
			ModelLoaded:      comps.Engine.Loaded(),
			ModelFingerprint: comps.Engine.Fingerprint(),
		}
		if indexed, err := comps.JobIndex.Count(); err == nil {
			status.IndexedJobs = indexed
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.JobIndexPath, cfg.Storage.ArtifactDir)
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
		fmt.Printf("jobs:               %d\n", status.Jobs)
		fmt.Printf("applicants:         %d\n", status.Applicants)
		fmt.Printf("prospects:          %d\n", status.Prospects)
		fmt.Printf("indexed_jobs:       %d\n", status.IndexedJobs)
		fmt.Printf("model_loaded:       %t\n", status.ModelLoaded)
		if status.ModelFingerprint != "" {
			fmt.Printf("model_fingerprint:  %s\n", status.ModelFingerprint)
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d\n", *status.DiskUsageBytes)
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
	fmt.Println(`Omiai - job applicant recommendation engine

Usage:
  omiai server [-config path] [-debug]          Start the HTTP API server
  omiai import [-jobs f] [-applicants f] [-prospects f] [-resume f -candidate id]
                                                Import source tables and resumes
  omiai train [-server url] [-output fmt]       Train the classifier on hire outcomes
  omiai recommend [flags] <job-id>              Rank applicants for a job
  omiai jobs [flags] <query>                    Keyword-search job postings
  omiai status [-server url] [-output fmt]      Show corpus and model status
  omiai version                                 Show version
  omiai help                                    Show this help`)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/fraudguard/agent"
	"github.com/kbukum/fraudguard/config"
	"github.com/kbukum/fraudguard/errors"
	"github.com/kbukum/fraudguard/extract"
	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/llm"
	"github.com/kbukum/fraudguard/llm/ollama"
	"github.com/kbukum/fraudguard/logger"
	"github.com/kbukum/fraudguard/lookup"
	"github.com/kbukum/fraudguard/pipeline"
	"github.com/kbukum/fraudguard/session"
	"github.com/kbukum/fraudguard/version"
)

func main() {
	var (
		configFile  = flag.String("config", "", "path to config.yml")
		mode        = flag.String("mode", "auto", "processing mode: auto or interactive")
		backend     = flag.String("backend", "", "capability backend override: ollama or heuristic")
		txFile      = flag.String("transaction", "", "path to a transaction JSON file (default: built-in example)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fraudguard: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Screening.Backend = *backend
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "fraudguard: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("main")
	log.Info("starting", logger.Fields(
		"version", version.Get().String(),
		"backend", cfg.Screening.Backend,
		"mode", *mode,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tx, err := loadTransaction(*txFile)
	if err != nil {
		log.Fatal("loading transaction", logger.ErrorFields("load", err))
	}

	stores := lookup.SeedDemoStores(tx.SenderAccount)
	suite := buildSuite(ctx, cfg, stores, log)

	pipeOpts := pipeline.Options{
		StageTimeout: cfg.Screening.StageTimeout,
		Log:          logger.GetGlobalLogger(),
	}
	if cfg.Screening.TopologyDir != "" {
		pipeOpts.Topologies = pipeline.NewFileTopologyLoader(cfg.Screening.TopologyDir)
	}
	executor := pipeline.NewExecutor(suite.Ports(), pipeOpts)
	executor.Engine.MaxParallel = cfg.Screening.MaxParallel

	switch *mode {
	case "auto":
		record, err := executor.Screen(ctx, tx)
		if err != nil {
			log.Fatal("screening failed", logger.ErrorFields("screen", err))
		}
		printResult(record)

	case "interactive":
		sess := session.New(executor, suite, pipeOpts, os.Stdin, os.Stdout)
		verdict, _, err := sess.Review(ctx, tx)
		if err != nil {
			log.Fatal("review session failed", logger.ErrorFields("review", err))
		}
		fmt.Printf("\nFinal verdict: %s\n", strings.ToUpper(string(verdict)))

	default:
		fmt.Fprintf(os.Stderr, "fraudguard: unknown mode %q (use auto or interactive)\n", *mode)
		os.Exit(2)
	}
}

// buildSuite selects the capability backend. When the configured LLM backend
// is unreachable the heuristic suite takes over so screening still works.
func buildSuite(ctx context.Context, cfg *config.Config, stores lookup.Stores, log *logger.Logger) *agent.Suite {
	if cfg.Screening.Backend == config.BackendHeuristic {
		return agent.NewHeuristicSuite(cfg.Rules, stores)
	}

	registry := llm.NewRegistry()
	registry.RegisterFactory(ollama.ProviderName, ollama.Factory())

	provider, err := registry.Create(ollama.ProviderName, map[string]any{
		"base_url": cfg.LLM.BaseURL,
		"model":    cfg.LLM.Model,
	})
	if err != nil {
		log.Warn("creating llm provider failed, using heuristic suite", logger.ErrorFields("create", err))
		return agent.NewHeuristicSuite(cfg.Rules, stores)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if !provider.IsAvailable(probeCtx) {
		log.Warn("llm backend unavailable, using heuristic suite", logger.Fields("base_url", cfg.LLM.BaseURL))
		return agent.NewHeuristicSuite(cfg.Rules, stores)
	}

	return agent.NewLLMSuite(provider, stores)
}

// loadTransaction reads a transaction from a JSON file, or returns the
// built-in example when no path is given.
func loadTransaction(path string) (fraud.Transaction, error) {
	if path == "" {
		return exampleTransaction(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fraud.Transaction{}, err
	}
	var tx fraud.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return fraud.Transaction{}, errors.InvalidInput("transaction", fmt.Sprintf("parsing %s", path)).WithCause(err)
	}
	if err := tx.Validate(); err != nil {
		return fraud.Transaction{}, err
	}
	return tx, nil
}

func exampleTransaction() fraud.Transaction {
	return fraud.Transaction{
		TransactionID:   "tx98766",
		SenderAccount:   "DE55500105173984217489",
		ReceiverAccount: "FR7630006000011234567890189",
		Amount:          2500.00,
		Timestamp:       time.Date(2023, 12, 15, 22, 45, 0, 0, time.UTC),
		Description:     "Dringende Zahlung",
		IsRealtime:      false,
	}
}

func printResult(record *fraud.OutcomeRecord) {
	fmt.Println("\n=== Fraud screening result ===")
	fmt.Printf("Transaction ID: %s\n", record.Transaction.TransactionID)
	fmt.Printf("ML assessment: %.1f%% fraud probability\n",
		extract.Float(record.MLAssessment, "probability")*100)

	flagged := "unsuspicious"
	if extract.Bool(record.RuleAssessment, "is_flagged") {
		flagged = "suspicious"
	}
	fmt.Printf("Rule assessment: %s\n", flagged)

	switch {
	case record.Err != "":
		fmt.Printf("Error: %s\n", record.Err)
	case record.FinalDecision != "":
		fmt.Printf("Final decision: %s\n", strings.ToUpper(record.FinalDecision))
	default:
		fmt.Println("Recommendation: review by a fraud manager is required")
	}

	if record.Explanation != "" {
		fmt.Println("\nExplanation:")
		fmt.Println(record.Explanation)
	}
}

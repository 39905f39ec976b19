// arena-server runs a deterministic platformer arena: a fixed-timestep
// combat kernel with weapon pickups, projectiles, beams, wind zones and
// teleporters, served to browsers over WebSocket and steppable offline
// for bot matches and agent training.
//
// Usage:
//
//	arena-server serve            - Start the HTTP/WebSocket server
//	arena-server sim              - Run a headless bot match
//
// Global flags:
//
//	--config <path>  - YAML config file (default: ./arena.yaml if present)
//	--seed <value>   - RNG seed for reproducible matches (0 = time-based)
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "arena",
})

var (
	flagConfig string
	flagSeed   int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena-server",
	Short: "Arena Blasters - deterministic platformer combat server",
	Long: `Arena Blasters is a real-time platformer arena: agents run, jump,
dash and drop through a scrolling world, picking up weapons and
fighting until the match clock runs out.

Available commands:
  serve    - Start the HTTP/WebSocket server
  sim      - Run a headless bot-vs-bot match and print the result

Examples:
  arena-server serve --addr :8080
  arena-server sim --ticks 7200 --seed 42`,
}

var (
	flagAddr      string
	flagClientDir string
	flagDBPath    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP/WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if flagAddr != "" {
			cfg.Server.Addr = flagAddr
		}
		if flagClientDir != "" {
			cfg.Server.ClientDir = flagClientDir
		}
		if flagDBPath != "" {
			cfg.Server.DBPath = flagDBPath
		}

		var db *DB
		var analytics *Analytics
		if cfg.Server.DBPath != "" {
			db, err = OpenDB(cfg.Server.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			analytics = NewAnalytics(db)
			defer analytics.Stop()
		}

		hub := NewHub(db, analytics, cfg.MatchConfig())
		go hub.Run()

		mux := SetupRoutes(hub, cfg.Server.ClientDir)
		server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			logger.Info("server starting", "addr", cfg.Server.Addr, "client", cfg.Server.ClientDir)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				logger.Fatal("listen", "err", err)
			}
		}()

		<-stop
		logger.Info("shutting down")
		hub.sessions.Stop()
		return server.Close()
	},
}

var (
	flagTicks int
	flagBots  int
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless bot match",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		seed := flagSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		mc := cfg.MatchConfig()
		if flagBots > 0 {
			mc.BotCount = flagBots
		}

		g := NewGame(mc, seed)
		g.autoRestart = false
		// Let the primary slot fight too
		g.players[0].IsBot = true
		g.brains[g.players[0].ID] = NewBotBrain()

		start := time.Now()
		for i := 0; i < flagTicks && g.timeLeft > 0; i++ {
			g.Advance(TickDt, nil)
		}
		elapsed := time.Since(start)

		logger.Info("sim finished", "seed", seed, "wall", elapsed)
		for _, p := range g.players {
			fmt.Printf("%-8s KOs:%-3d Deaths:%-3d HP:%d\n", p.Name, p.KOs, p.Deaths, p.HP)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagClientDir, "client", "", "Path to client directory (overrides config)")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "Path to SQLite database (overrides config)")

	simCmd.Flags().IntVar(&flagTicks, "ticks", 7200, "Number of simulation ticks to run")
	simCmd.Flags().IntVar(&flagBots, "bots", 0, "Bot count override")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simCmd)
}

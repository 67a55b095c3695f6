package cmd

import (
	"fmt"
	"io"
	"log"
	"time"

	"flipnews/internal/cache"
	"flipnews/internal/client"
	"flipnews/internal/config"
	"flipnews/internal/favorites"
	"flipnews/internal/navigator"
	"flipnews/internal/storage"
	"flipnews/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type browseOptions struct {
	configPath       string
	server           string
	category         string
	search           string
	favoritesBackend string
	endPolicy        string
	logFile          string
}

func newBrowseCmd() *cobra.Command {
	opts := &browseOptions{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse news one article at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBrowse(cfg, opts.search)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (o *browseOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "path to config file")
	f.StringVar(&o.server, "server", "", "proxy base URL")
	f.StringVar(&o.category, "category", "", "initial category")
	f.StringVar(&o.search, "search", "", "initial search query (wins over --category)")
	f.StringVar(&o.favoritesBackend, "favorites-backend", "", "favorites storage: json or sqlite")
	f.StringVar(&o.endPolicy, "end-policy", "", "after an empty page: probe or stop")
	f.StringVar(&o.logFile, "log-file", "", "write logs to this file")
}

// apply overrides cfg with the flags set on the command line.
func (o *browseOptions) apply(cmd *cobra.Command, cfg *config.ClientConfig) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = o.server
	}
	if flags.Changed("category") {
		cfg.Category = o.category
	}
	if flags.Changed("favorites-backend") {
		cfg.FavoritesBackend = o.favoritesBackend
		cfg.FavoritesPath = ""
	}
	if flags.Changed("end-policy") {
		cfg.EndPolicy = o.endPolicy
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
}

func runBrowse(cfg *config.ClientConfig, search string) error {
	// The TUI owns the terminal, so logs go to a file or nowhere.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "flipnews")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	policy, err := navigator.ParseEndPolicy(cfg.EndPolicy)
	if err != nil {
		return err
	}

	persister, err := storage.NewPersister(cfg.FavoritesBackend, cfg.ResolvedFavoritesPath())
	if err != nil {
		return fmt.Errorf("opening favorites: %w", err)
	}
	defer persister.Close()

	news := client.New(cfg.ServerURL, cfg.Language, 15*time.Second)

	return tui.Run(tui.RunOpts{
		Loader:    navigator.NewLoader(news, cache.NewPageCache()),
		Favorites: favorites.Open(persister),
		EndPolicy: policy,
		Category:  cfg.Category,
		Search:    search,
		Logger:    log.Default(),
	})
}

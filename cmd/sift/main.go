package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	sift "github.com/hubenschmidt/go-sift"
	"github.com/hubenschmidt/go-sift/config"
	"github.com/hubenschmidt/go-sift/core"
	"github.com/hubenschmidt/go-sift/server"
)

var (
	cfgFile   string
	dbPath    string
	model     string
	chunkSize int
	overlap   int
	topK      int
	exts      []string
	ignores   []string
)

func main() {
	godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sift",
		Short:         "Index text documents and query them by semantic similarity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "sift.yaml", "config file path")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "vector store path or postgres:// DSN")
	root.PersistentFlags().StringVar(&model, "model", "", "embedding model")
	root.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0, "maximum chunk length in characters")
	root.PersistentFlags().IntVar(&overlap, "overlap", -1, "chunk overlap in characters")

	root.AddCommand(newIndexCmd(), newReindexCmd(), newQueryCmd(), newStatsCmd(), newServeCmd())
	return root
}

func loadSettings() (config.Settings, error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return config.Settings{}, err
	}

	var o config.Override
	if dbPath != "" {
		o.StorePath = &dbPath
	}
	if model != "" {
		o.EmbedModel = &model
	}
	if chunkSize > 0 {
		o.ChunkSize = &chunkSize
	}
	if overlap >= 0 {
		o.ChunkOverlap = &overlap
	}
	if topK > 0 {
		o.TopK = &topK
	}
	return settings.Apply(o), nil
}

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [directory]",
		Short: "Index every matching document under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			result, err := sift.IndexDocuments(cmd.Context(), settings, args[0], sift.IndexOptions{
				Extensions:     exts,
				IgnorePatterns: ignores,
			})
			if err != nil {
				return err
			}
			color.Green("Indexed %d files (%d chunks)", result.FilesProcessed, result.ChunksCreated)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "allowed file extensions (default: text-like)")
	cmd.Flags().StringSliceVar(&ignores, "ignore", nil, "substring patterns to skip")
	return cmd
}

func newReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex [directory]",
		Short: "Reconcile the index against the directory and re-embed files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			result, err := sift.ReindexDocuments(cmd.Context(), settings, args[0], sift.IndexOptions{
				Extensions:     exts,
				IgnorePatterns: ignores,
			})
			if err != nil {
				return err
			}
			color.Green("Reindexed %d files, %d updated (%d chunks)",
				result.FilesProcessed, result.FilesUpdated, result.ChunksCreated)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "allowed file extensions (default: text-like)")
	cmd.Flags().StringSliceVar(&ignores, "ignore", nil, "substring patterns to skip")
	return cmd
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Search the index for chunks similar to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			result, err := sift.Query(cmd.Context(), settings, args[0], topK)
			if err != nil {
				return err
			}

			for i, hit := range result.Context {
				color.Yellow("[%d] %s (%.3f)", i+1, hit.SourcePath, hit.Similarity)
				fmt.Println(hit.Content)
				fmt.Println()
			}
			if len(result.Citations) > 0 {
				color.Cyan("Sources: %v", result.Citations)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of results (default from config)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show chunk count and indexed sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			// Stats reads the store only; a missing embedding credential
			// is not an error here.
			resolved, err := settings.Resolve()
			if err != nil && !errors.Is(err, core.ErrMissingAPIKey) {
				return err
			}

			store, err := server.NewStore(resolved)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			sources, err := store.ListSources(cmd.Context())
			if err != nil {
				return err
			}

			color.Green("%d chunks across %d sources", count, len(sources))
			for _, src := range sources {
				fmt.Println("  " + src)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve index, reindex, and query over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			srv, err := sift.NewServer(sift.ServerConfig{Settings: settings})
			if err != nil {
				return err
			}
			defer srv.Close()

			log.Printf("[server] Listening on %s", addr)
			return http.ListenAndServe(addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
	"github.com/lv-asc/vangarments-app-sub017/internal/service"
	"github.com/lv-asc/vangarments-app-sub017/models"
)

type cliOptions struct {
	serverURL string
	dbPath    string
	authToken string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "wardrobe",
		Short: "Offline-first wardrobe manager",
		Long: "wardrobe keeps your item collection usable without a network\n" +
			"connection and reconciles local changes with the remote service\n" +
			"whenever connectivity allows.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.serverURL, "server", "s", "", "remote service base URL")
	root.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", "", "local database path")
	root.PersistentFlags().StringVar(&opts.authToken, "auth-token", "", "bearer token for the remote service")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newWearCmd(opts),
		newDeleteCmd(opts),
		newSyncCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)

	return root
}

// buildEngine assembles the engine from env/JSON config overridden by the
// persistent CLI flags. The caller owns Close.
func buildEngine(opts *cliOptions) (*service.Engine, *logger.Logger, error) {
	log := logger.Nop()
	if opts.verbose {
		log = logger.NewLogger("wardrobe")
	}

	cfg, err := config.GetEnvConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.serverURL != "" {
		cfg.Adapter.BaseURL = opts.serverURL
	}
	if opts.dbPath != "" {
		cfg.Storage.DBPath = opts.dbPath
	}
	if opts.authToken != "" {
		cfg.Adapter.AuthToken = opts.authToken
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	engine, err := service.BuildEngine(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return engine, log, nil
}

func newAddCmd(opts *cliOptions) *cobra.Command {
	var fields models.ItemFields
	var condition, tags string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the wardrobe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, err := buildEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			fields.Condition = models.Condition(condition)
			if tags != "" {
				fields.Tags = strings.Split(tags, ",")
			}

			id, err := engine.AddItem(cmd.Context(), fields)
			if err != nil {
				return err
			}

			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&fields.Name, "name", "", "item name (required)")
	cmd.Flags().StringVar(&fields.Category, "category", "", "item category")
	cmd.Flags().StringVar(&fields.Brand, "brand", "", "brand")
	cmd.Flags().StringVar(&fields.Color, "color", "", "color")
	cmd.Flags().StringVar(&fields.Size, "size", "", "size")
	cmd.Flags().StringVar(&condition, "condition", "", "condition: new|excellent|good|fair|poor")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().BoolVar(&fields.IsFavorite, "favorite", false, "mark as favorite")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newListCmd(opts *cliOptions) *cobra.Command {
	var filter models.ItemFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wardrobe items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, err := buildEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			items, err := engine.ListItems(cmd.Context(), filter)
			if err != nil {
				return err
			}

			for _, item := range items {
				marker := " "
				if item.NeedsSync {
					marker = "*"
				}
				fav := ""
				if item.IsFavorite {
					fav = " ★"
				}
				fmt.Printf("%s %s  %-24s %-12s %s%s\n", marker, item.ID, item.Name, item.Category, item.Brand, fav)
			}

			pending, err := engine.PendingCount(cmd.Context())
			if err == nil && pending > 0 {
				fmt.Printf("\n%d item(s) awaiting sync\n", pending)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&filter.Search, "search", "", "free-text match on name and brand")
	cmd.Flags().BoolVar(&filter.FavoritesOnly, "favorites", false, "favorites only")

	return cmd
}

func newWearCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "wear <id>",
		Short: "Record that an item was worn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := buildEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			return engine.RecordWear(cmd.Context(), args[0])
		},
	}
}

func newDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item (propagated on the next sync)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := buildEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			return engine.DeleteItem(cmd.Context(), args[0])
		},
	}
}

func newSyncCmd(opts *cliOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, err := buildEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			engine.Start(ctx)

			done := make(chan models.SyncState, 1)
			var sawSyncing bool
			unsubscribe := engine.SubscribeSyncState(func(state models.SyncState) {
				if state.Phase == models.PhaseSyncing {
					sawSyncing = true
					return
				}
				if sawSyncing {
					select {
					case done <- state:
					default:
					}
				}
			})
			defer unsubscribe()

			engine.ForceSync()

			select {
			case <-ctx.Done():
				return errors.New("sync timed out")
			case state := <-done:
				if state.LastError != "" {
					return fmt.Errorf("sync finished with error: %s (%d pending)", state.LastError, state.PendingCount)
				}
				fmt.Printf("synced, %d pending\n", state.PendingCount)
				return nil
			}
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}

func newWatchCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the engine in the foreground, syncing on a schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, log, err := buildEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine.Start(ctx)
			unsubscribe := engine.SubscribeSyncState(func(state models.SyncState) {
				log.Info().
					Str("phase", string(state.Phase)).
					Int("pending", state.PendingCount).
					Str("last_error", state.LastError).
					Msg("sync state")
			})
			defer unsubscribe()

			<-ctx.Done()
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(_ *cobra.Command, _ []string) {
			printBuildInfo()
		},
	}
}

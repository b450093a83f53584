package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"runtime"
	"sync"

	"github.com/dendrascience/imgdedup/internal/logging"
	"github.com/dendrascience/imgdedup/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewScanCmd creates and returns the scan subcommand for the imgdedup CLI.
// It hashes a directory tree and reports duplicates without writing anything.
func NewScanCmd() *cobra.Command {
	var (
		path     string
		workers  int
		listDups bool
	)

	cmd := &cobra.Command{
		Use:   "scan [PATH]",
		Short: "Hash a directory tree and report duplicate files",
		Long: `Hash every regular file in a directory tree and report how many are
content-identical.

This is a read-only dry run of the grouping the converter performs: files
sharing a digest are converted once. Non-image files are counted too, since
nothing is decoded here.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}
			level, _ := cmd.Flags().GetString("log-level")
			logger, err := logging.New(level)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			table, err := scanTree(cmd.Context(), path, workers, logger)
			if err != nil {
				return err
			}
			printScan(cmd.OutOrStdout(), table, listDups)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "./", "Path to scan")
	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Files hashed concurrently")
	cmd.Flags().BoolVarP(&listDups, "list", "l", false, "List the members of every duplicate group")

	return cmd
}

// scanTree hashes every file under root. Unreadable files are logged and
// left out of the table.
func scanTree(ctx context.Context, root string, workers int, logger *zap.Logger) (*util.DigestTable, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu    sync.Mutex
		table util.DigestTable
		g     errgroup.Group
	)
	g.SetLimit(workers)

	walkErr := util.WalkFiles(root, nil, func(path string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			info, err := d.Info()
			if err != nil {
				logger.Warn("cannot stat file", zap.String("path", path), zap.Error(err))
				return nil
			}
			hash, err := util.GetFileHash(path)
			if err != nil {
				logger.Warn("cannot hash file", zap.String("path", path), zap.Error(err))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			table.Add(util.LookupEntry{
				Hash:     hash,
				Modified: info.ModTime(),
				Name:     path,
				Size:     info.Size(),
			})
			return nil
		})
		return nil
	}, func(path string, err error) {
		logger.Warn("skipping path", zap.String("path", path), zap.Error(err))
	})

	_ = g.Wait()
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", root, walkErr)
	}
	table.Sort()
	return &table, nil
}

func printScan(w io.Writer, table *util.DigestTable, listDups bool) {
	groups := table.DuplicateGroups()

	fmt.Fprintf(w, "Files:            %d\n", table.Len())
	fmt.Fprintf(w, "Unique digests:   %d\n", table.GetUniqueCount())
	fmt.Fprintf(w, "Duplicate groups: %d\n", len(groups))
	fmt.Fprintf(w, "Total size:       %s\n", humanize.Bytes(uint64(table.GetTotalSize())))
	fmt.Fprintf(w, "Duplicate bytes:  %s\n", humanize.Bytes(uint64(table.GetDuplicateSize())))

	if !listDups {
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s (%d copies, %s each)\n", g[0].Hash, len(g), humanize.Bytes(uint64(g[0].Size)))
		for _, e := range g {
			fmt.Fprintf(w, "  %s\n", e.Name)
		}
	}
}

// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// trietool builds completion tries from word lists and queries them.
//
//	trietool build items.txt items.bin
//	trietool build --snappy items.txt items.bin.sz
//	trietool complete items.bin "gol"
//	trietool dump items.bin
//	trietool stats https://cdn.example.com/items.bin
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/itemserve/internal/logger"
	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/config"
	"github.com/bastiangx/itemserve/pkg/dictionary"
	"github.com/bastiangx/itemserve/pkg/trie"
	"github.com/charmbracelet/log"
	"github.com/golang/snappy"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug      bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "trietool",
		Short:         "Build and query completion tries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.debug)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file with s3 credentials")

	rootCmd.AddCommand(
		newBuildCmd(),
		newCompleteCmd(opts),
		newDumpCmd(opts),
		newStatsCmd(opts),
	)
	return rootCmd
}

func newBuildCmd() *cobra.Command {
	var compress bool
	cmd := &cobra.Command{
		Use:   "build INPUT OUTPUT",
		Short: "Build a trie from a word list, one entry per line (- reads stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dictionary.DetectFormat(args[1]) == dictionary.FormatSnappy {
				compress = true
			}
			return runBuild(cmd.InOrStdin(), args[0], args[1], compress)
		},
	}
	cmd.Flags().BoolVar(&compress, "snappy", false, "Snappy compress the output")
	return cmd
}

func runBuild(stdin io.Reader, input, output string, compress bool) error {
	l := logger.New("build")
	start := time.Now()

	in := stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	b := trie.NewBuilder()
	lines, err := b.AddFrom(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	data, err := b.Build()
	if err != nil {
		return fmt.Errorf("building %s: %w", output, err)
	}
	size := len(data)
	if compress {
		data = snappy.Encode(nil, data)
	}
	if err := utils.WriteFileAtomic(output, data); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	l.Info("Built trie",
		"output", output,
		"lines", utils.FormatWithCommas(lines),
		"entries", utils.FormatWithCommas(b.Len()),
		"size", utils.FormatBytes(size),
		"written", utils.FormatBytes(len(data)),
		"took", time.Since(start))
	return nil
}

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "complete FILE QUERY",
		Short: "Print the completions of QUERY, one per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, w := range tree.CompleteN(args[1], limit) {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", trie.MaxResults, "Maximum number of completions (1-100)")
	return cmd
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every entry in dictionary order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return tree.Walk(func(word string) bool {
				fmt.Fprintln(out, word)
				return true
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Print node, entry, depth and size statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st, err := tree.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:     %s\n", utils.FormatWithCommas(st.Nodes))
			fmt.Fprintf(out, "entries:   %s\n", utils.FormatWithCommas(st.Terminals))
			fmt.Fprintf(out, "max depth: %d\n", st.MaxDepth)
			fmt.Fprintf(out, "size:      %s\n", utils.FormatBytes(st.Bytes))
			return nil
		},
	}
}

// load fetches a dictionary the way the server does, without retries.
func (o *rootOptions) load(ctx context.Context, loc string) (*trie.Tree, error) {
	var s3 dictionary.S3Options
	if o.configPath != "" {
		cfg, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		s3 = cfg.S3Options()
	}
	src, err := dictionary.ParseSource(loc, s3)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return dictionary.NewLoader(src, dictionary.WithRetries(0, 0)).Load(ctx)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"veles-ids/veles/pkg/config"
	"veles-ids/veles/pkg/datasets"
)

var datasetFlags struct {
	typ       string
	format    string
	valueKey  string
	arrayKey  string
	removeKey bool
	memcap    string
	hashsize  string
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Inspect dataset files",
	Long:  `Load and inspect dataset files without starting the engine.`,
}

var datasetsCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Load a dataset file and report its contents",
	Long: `Load a dataset file the way the engine would at rule setup and report
the number of keys and the memory consumed. A non-zero exit status means
the file would fail to bind at rule load time.

Examples:
  # Check a plain hash list
  veles datasets check hashes.lst --type md5

  # Check an NDJSON reputation feed
  veles datasets check feed.ndjson --type ipv4 --format ndjson --value-key ip`,
	Args: cobra.ExactArgs(1),
	RunE: checkDataset,
}

var datasetsDumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Load a dataset file and print its keys",
	Long: `Load a dataset file and print every key in its textual form, one per
line, in sorted order. String keys are printed base64 encoded, hashes in
hex, addresses in their usual notation.`,
	Args: cobra.ExactArgs(1),
	RunE: dumpDataset,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.AddCommand(datasetsCheckCmd)
	datasetsCmd.AddCommand(datasetsDumpCmd)

	for _, cmd := range []*cobra.Command{datasetsCheckCmd, datasetsDumpCmd} {
		cmd.Flags().StringVar(&datasetFlags.typ, "type", "", "key type: string, md5, sha256, ipv4, ip (required)")
		cmd.Flags().StringVar(&datasetFlags.format, "format", "csv", "file format: csv, json, ndjson")
		cmd.Flags().StringVar(&datasetFlags.valueKey, "value-key", "", "JSON path the key is extracted from (json formats)")
		cmd.Flags().StringVar(&datasetFlags.arrayKey, "array-key", "", "JSON path of the record array (json format)")
		cmd.Flags().BoolVar(&datasetFlags.removeKey, "remove-key", false, "strip the value-key field from stored values")
		cmd.Flags().StringVar(&datasetFlags.memcap, "memcap", "", "memory cap, e.g. 64mb (default from config)")
		cmd.Flags().StringVar(&datasetFlags.hashsize, "hashsize", "", "hash table size hint (default from config)")
		cmd.MarkFlagRequired("type")
	}
}

func loadDataset(path string) (*datasets.Dataset, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.NewDefault()
	}

	typ, err := datasets.ParseType(datasetFlags.typ)
	if err != nil {
		return nil, err
	}
	format, err := datasets.ParseFormat(datasetFlags.format)
	if err != nil {
		return nil, err
	}

	opts := datasets.Options{
		Name:      "check",
		Type:      typ,
		Format:    format,
		LoadPath:  path,
		ValueKey:  datasetFlags.valueKey,
		ArrayKey:  datasetFlags.arrayKey,
		RemoveKey: datasetFlags.removeKey,
	}
	if datasetFlags.memcap != "" {
		memcap, err := humanize.ParseBytes(datasetFlags.memcap)
		if err != nil {
			return nil, fmt.Errorf("invalid memcap %q: %w", datasetFlags.memcap, err)
		}
		opts.Memcap = memcap
	}
	if datasetFlags.hashsize != "" {
		hashsize, err := humanize.ParseBytes(datasetFlags.hashsize)
		if err != nil {
			return nil, fmt.Errorf("invalid hashsize %q: %w", datasetFlags.hashsize, err)
		}
		opts.Hashsize = uint32(hashsize)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return datasets.NewRegistry(cfg).GetOrCreate(opts)
}

func checkDataset(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Type:    %s\n", ds.Type())
	fmt.Printf("Format:  %s\n", ds.Format())
	fmt.Printf("Keys:    %d\n", ds.Len())
	fmt.Printf("Memory:  %s\n", humanize.Bytes(ds.MemUse()))
	return nil
}

func dumpDataset(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(args[0])
	if err != nil {
		return err
	}
	return ds.Dump(os.Stdout)
}

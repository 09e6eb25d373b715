// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenguard/docflow/pkg/types"
)

// conversionConfig assembles the conversion settings for a command.
// Flags win over config file values, which win over defaults.
func conversionConfig(cmd *cobra.Command) types.ConversionConfig {
	backend, _ := cmd.Flags().GetString("backend")
	if backend == "" {
		backend = viper.GetString("conversion.backend")
	}
	workDir, _ := cmd.Flags().GetString("work-dir")
	if !cmd.Flags().Changed("work-dir") {
		if v := viper.GetString("conversion.work_dir"); v != "" {
			workDir = v
		}
	}
	image := viper.GetString("conversion.container_image")
	if f, _ := cmd.Flags().GetString("image"); f != "" {
		image = f
	}

	timeout := viper.GetDuration("conversion.timeout")
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return types.ConversionConfig{
		Backend:        types.ConversionBackend(backend),
		WorkDir:        workDir,
		ContainerImage: image,
		LayoutBaseURL:  viper.GetString("conversion.layout_base_url"),
		LayoutAPIKey:   secretDefault("layout-api-key", viper.GetString("conversion.layout_api_key")),
		Timeout:        timeout,
	}
}

func parseConfig(cmd *cobra.Command) types.ParseConfig {
	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = viper.GetInt("parse.workers")
	}
	skip := true
	if viper.IsSet("parse.skip_boilerplate") {
		skip = viper.GetBool("parse.skip_boilerplate")
	}
	if cmd.Flags().Changed("keep-boilerplate") {
		keep, _ := cmd.Flags().GetBool("keep-boilerplate")
		skip = !keep
	}
	return types.ParseConfig{
		SkipBoilerplate:    skip,
		ExtraAbbreviations: viper.GetStringSlice("parse.extra_abbreviations"),
		Workers:            workers,
	}
}

func exportConfig(cmd *cobra.Command) types.ExportConfig {
	cfg := types.ExportConfig{
		SheetName: viper.GetString("export.sheet_name"),
		OutDir:    viper.GetString("export.out_dir"),
		Metadata:  viper.GetStringMapString("export.metadata"),
	}
	if len(cfg.Metadata) == 0 {
		cfg.Metadata = nil
	}
	if viper.IsSet("export.hidden_columns") {
		cfg.HiddenColumns = viper.GetStringSlice("export.hidden_columns")
	}

	if cmd.Flags().Lookup("out") != nil {
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.OutDir = out
		}
	}
	if cmd.Flags().Lookup("meta") != nil {
		meta, _ := cmd.Flags().GetStringToString("meta")
		if len(meta) > 0 {
			cfg.Metadata = meta
		}
	}
	return cfg
}

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	storeDir, _ := cmd.Flags().GetString("store-dir")
	if storeDir == "" {
		storeDir = viper.GetString("store.store_dir")
	}
	if storeDir == "" {
		storeDir = "store"
	}
	return types.StoreConfig{
		StoreDir:   storeDir,
		MaxResults: viper.GetInt("store.max_results"),
	}
}

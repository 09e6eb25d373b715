// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenguard/docflow/internal/outline"
	"github.com/greenguard/docflow/internal/pipeline"
	"github.com/greenguard/docflow/internal/server"
	"github.com/greenguard/docflow/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction pipeline over HTTP",
	Long: `Serve starts an HTTP front end for the pipeline. POST a PDF to
/api/extract and get back the extracted xlsx workbook. GET /health for
liveness. Set server.api_key (or the server-api-key secret) to require
an X-API-Key header on /api routes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8090)")
	serveCmd.Flags().String("backend", "", "conversion backend: pdftext, docling, or layout")
	serveCmd.Flags().String("image", "", "docling container image")
	serveCmd.Flags().String("outline", "", "outline sidecar YAML for heading backfill")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := types.PipelineConfig{
		Conversion: conversionConfig(cmd),
		Parse:      parseConfig(cmd),
		Export:     exportConfig(cmd),
	}

	var o *outline.Outline
	if path, _ := cmd.Flags().GetString("outline"); path != "" {
		var err error
		o, err = outline.LoadYAML(path)
		if err != nil {
			return err
		}
	}

	p, err := pipeline.New(cfg, o)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("server.addr")
	}
	if addr == "" {
		addr = ":8090"
	}

	serverCfg := types.ServerConfig{
		Addr:           addr,
		APIKey:         secretDefault("server-api-key", viper.GetString("server.api_key")),
		MaxUploadBytes: viper.GetInt64("server.max_upload_bytes"),
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s := server.NewServer(p, log, serverCfg, cfg.Export)

	log.Info("listening", "addr", addr, "backend", string(cfg.Conversion.Backend))
	return http.ListenAndServe(addr, s)
}

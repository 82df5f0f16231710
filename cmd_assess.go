package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mr-Alvaro/Crediticio-System/config"
	httpLayer "github.com/Mr-Alvaro/Crediticio-System/http"
	"github.com/Mr-Alvaro/Crediticio-System/service"
)

func newAssessCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Evalúa una solicitud desde un archivo JSON (o stdin con -f -)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("abrir solicitud: %w", err)
				}
				defer f.Close()
				in = f
			}

			var req httpLayer.PredictRequest
			if err := json.NewDecoder(in).Decode(&req); err != nil {
				return fmt.Errorf("leer solicitud: %w", err)
			}
			app, ind, err := req.ToDomain()
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Log, cmd.ErrOrStderr())
			svc := service.NewAssessmentService(newPredictor(cfg.Classifier, logger), nil, nil, logger)

			rec, err := svc.Assess(cmd.Context(), app, ind)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec.Result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "archivo JSON con la solicitud")

	return cmd
}

package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/bwise1/reportnow/internal/client"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type submitOptions struct {
	reportType   string
	title        string
	description  string
	incidentType string
	location     string
	imagePath    string
	lat          float64
	lng          float64
	notify       bool
	email        string
}

func newSubmitCmd(newClient func() (*client.Client, error)) *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			form := client.NewForm(c, opts.reportType, func(reportID string) {
				log.Info().Str("report_id", reportID).Msg("report submitted")
			})

			if opts.imagePath != "" {
				dataURL, err := readImage(opts.imagePath)
				if err != nil {
					return err
				}
				if _, err := form.AttachImage(cmd.Context(), dataURL); err != nil {
					log.Warn().Err(err).Msg("image analysis failed, fill in the details manually")
				}
			}

			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if _, err := form.UseLocation(cmd.Context(), opts.lat, opts.lng); err != nil {
					log.Warn().Err(err).Msg("address lookup failed")
				}
			}

			form.Edit(func(r *model.CreateReportRequest) {
				if opts.title != "" {
					r.Title = opts.title
				}
				if opts.description != "" {
					r.Description = opts.description
				}
				if opts.incidentType != "" {
					r.IncidentType = opts.incidentType
				}
				if opts.location != "" {
					r.Location = opts.location
				}
				r.WantsNotifications = opts.notify
				r.Email = opts.email
			})

			resp, err := form.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.reportType, "type", model.ReportTypeEmergency, "EMERGENCY or NON_EMERGENCY")
	flags.StringVar(&opts.title, "title", "", "report title")
	flags.StringVar(&opts.description, "description", "", "report description")
	flags.StringVar(&opts.incidentType, "incident-type", "", "incident category, e.g. \"Fire Outbreak\"")
	flags.StringVar(&opts.location, "location", "", "address of the incident")
	flags.StringVar(&opts.imagePath, "image", "", "path to a photo to analyze and attach")
	flags.Float64Var(&opts.lat, "lat", 0, "latitude")
	flags.Float64Var(&opts.lng, "lng", 0, "longitude")
	flags.BoolVar(&opts.notify, "notify", false, "email status updates")
	flags.StringVar(&opts.email, "email", "", "address for status updates")

	return cmd
}

// readImage loads a file as a base64 data URL.
func readImage(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(raw)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

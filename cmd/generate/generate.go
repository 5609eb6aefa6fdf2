// Package generate implements the report generation command: resolve night
// windows, query the Frigate database, render the report, deliver it.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/datastore"
	"github.com/tphakala/fox-report/internal/errors"
	"github.com/tphakala/fox-report/internal/frigate"
	"github.com/tphakala/fox-report/internal/nightwindow"
	"github.com/tphakala/fox-report/internal/notify"
	"github.com/tphakala/fox-report/internal/report"
)

// Command creates the generate command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		date       string
		jsonOutput string
		noEmail    bool
		noMQTT     bool
		htmlBody   bool
		textBody   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a fox detection report and deliver it",
		Long: `Resolve the night windows for the requested nights, collect matching
detections from the Frigate database, write the JSON artifact, print the
Markdown report and deliver it over email and MQTT as configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if htmlBody {
				settings.Email.HTML = true
			}
			if textBody {
				settings.Email.HTML = false
			}
			return runGenerate(cmd, settings, date, jsonOutput, noEmail, noMQTT)
		},
	}

	cmd.Flags().IntVarP(&settings.Nights.Count, "nights", "n", viper.GetInt("nights.count"), "Number of most recent nights to include")
	cmd.Flags().StringVar(&date, "date", "", "Most recent night to analyze (YYYY-MM-DD, defaults to tonight)")
	cmd.Flags().StringVar(&jsonOutput, "json-output", "", "Path for the JSON report artifact (defaults to fox_report_YYYYMMDD.json in report.outputdir)")
	cmd.Flags().BoolVar(&noEmail, "no-email", false, "Skip email delivery even when enabled in the config")
	cmd.Flags().BoolVar(&noMQTT, "no-mqtt", false, "Skip MQTT publishing even when enabled in the config")
	cmd.Flags().BoolVar(&htmlBody, "html", false, "Email the HTML report body with thumbnails")
	cmd.Flags().BoolVar(&textBody, "text", false, "Email the plain-text report body")
	cmd.MarkFlagsMutuallyExclusive("html", "text")

	return cmd
}

func runGenerate(cmd *cobra.Command, settings *conf.Settings, date, jsonOutput string, noEmail, noMQTT bool) error {
	ctx := cmd.Context()

	resolver, err := nightwindow.New(settings)
	if err != nil {
		return err
	}

	var startDate time.Time
	if date != "" {
		startDate, err = time.ParseInLocation("2006-01-02", date, resolver.Location())
		if err != nil {
			return errors.New(fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)).
				Component("cmd").
				Category(errors.CategoryValidation).
				Build()
		}
	}

	ranges, err := resolver.ResolveManyFrom(startDate, settings.Nights.Count)
	if err != nil {
		return err
	}

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var verifier report.ClipVerifier
	if settings.Frigate.VerifyClips && settings.Frigate.Host != "" {
		cfg := frigate.DefaultConfig()
		cfg.Host = settings.Frigate.Host
		client, err := frigate.NewClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		verifier = client
	}

	builder := report.NewBuilder(store, settings, verifier, resolver.Location())
	data, err := builder.Build(ctx, ranges)
	if err != nil {
		return err
	}

	artifactPath := jsonOutput
	if artifactPath == "" {
		artifactPath = report.ArtifactPath(settings.Report.OutputDir, data.Metadata.GeneratedAt)
	}
	if err := report.WriteJSON(data, artifactPath); err != nil {
		return err
	}

	markdown, err := report.RenderMarkdown(data, settings.Report.TopEvents)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), markdown)
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", artifactPath)

	if settings.Email.Enabled && !noEmail {
		if err := sendEmail(ctx, settings, data, artifactPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Email sent successfully.")
	}

	if settings.MQTT.Enabled && !noMQTT {
		if err := publishSummary(ctx, settings, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Summary published to %s.\n", settings.MQTT.Topic)
	}

	return nil
}

// sendEmail renders the HTML body and delivers it. The provider converts to
// plain text itself when the config asks for text email.
func sendEmail(ctx context.Context, settings *conf.Settings, data *report.Data, artifactPath string) error {
	htmlBody, err := report.RenderHTML(data, settings.Report.HTMLEvents, artifactPath)
	if err != nil {
		return err
	}

	provider := notify.NewEmailProvider(settings)
	if err := provider.ValidateConfig(); err != nil {
		return err
	}

	subject := notify.Subject(data.Totals.TotalEvents, data.Metadata.GeneratedAt)
	return provider.Send(ctx, subject, htmlBody)
}

func publishSummary(ctx context.Context, settings *conf.Settings, data *report.Data) error {
	client, err := notify.NewMQTTClient(settings)
	if err != nil {
		return err
	}
	return notify.PublishSummary(ctx, client, settings.MQTT.Topic, notify.NewSummary(data))
}

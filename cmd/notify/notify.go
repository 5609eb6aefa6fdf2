package notify

import (
	"fmt"
	"html"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/fox-report/internal/conf"
	delivery "github.com/tphakala/fox-report/internal/notify"
)

// Command returns a cobra command that sends a test message through the
// configured delivery channels.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		target  string
		message string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test message to validate delivery configuration",
		Long: `Send a test message through the configured delivery channels without
generating a report. Useful for validating SMTP credentials and MQTT
broker connectivity after editing the configuration.

Examples:
  # Test every enabled channel
  fox-report notify

  # Test only SMTP delivery
  fox-report notify --test=email --message="SMTP relay check"

  # Test only the MQTT broker
  fox-report notify --test=mqtt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var wantEmail, wantMQTT bool
			switch target {
			case "email":
				wantEmail = true
			case "mqtt":
				wantMQTT = true
			case "all":
				wantEmail = true
				wantMQTT = true
			default:
				return fmt.Errorf("invalid test target: %s (expected email, mqtt or all)", target)
			}
			explicit := target != "all"

			if wantEmail {
				if err := testEmail(cmd, settings, message, explicit); err != nil {
					return err
				}
			}
			if wantMQTT {
				if err := testMQTT(cmd, settings, explicit); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "test", "all", "Channel to test: email|mqtt|all")
	cmd.Flags().StringVar(&message, "message", "This is a test message from fox-report", "Test message body")

	return cmd
}

func testEmail(cmd *cobra.Command, settings *conf.Settings, message string, explicit bool) error {
	if !settings.Email.Enabled {
		if explicit {
			return fmt.Errorf("email delivery is disabled in configuration")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Email delivery disabled, skipping.")
		return nil
	}

	provider := delivery.NewEmailProvider(settings)
	if err := provider.ValidateConfig(); err != nil {
		return err
	}

	subject := "🦊 Fox Report Test Notification"
	body := "<p>" + html.EscapeString(message) + "</p>"
	if err := provider.Send(cmd.Context(), subject, body); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Email test sent: host=%s recipients=%d\n",
		settings.Email.SMTP.Host, len(settings.Email.To))
	return nil
}

func testMQTT(cmd *cobra.Command, settings *conf.Settings, explicit bool) error {
	if !settings.MQTT.Enabled {
		if explicit {
			return fmt.Errorf("MQTT delivery is disabled in configuration")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "MQTT delivery disabled, skipping.")
		return nil
	}

	client, err := delivery.NewMQTTClient(settings)
	if err != nil {
		return err
	}

	// An empty summary exercises the same connect/publish/disconnect path
	// the report uses.
	summary := &delivery.Summary{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Cameras:     map[string]int{},
		Windows:     []delivery.SummaryWindow{},
	}

	if err := delivery.PublishSummary(cmd.Context(), client, settings.MQTT.Topic, summary); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "MQTT test published: broker=%s topic=%s\n",
		settings.MQTT.Broker, settings.MQTT.Topic)
	return nil
}

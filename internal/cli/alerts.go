package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/integration"
	"github.com/valter-silva-au/procurement-dashboard/internal/observability"
)

// deliveryKindSlackAlerts marks outbox entries holding alerts for Slack.
const deliveryKindSlackAlerts = "slack_alerts"

var (
	alertsNotify bool
	alertsJSON   bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active schedule alerts",
	Long: `Evaluate alert conditions against the project schedule and display any
triggered alerts.

Alerts fire for unfinished tasks past their end date, critical-path tasks
falling behind their planned progress, pending tasks whose start date has
passed, and inconsistent schedule data.

With --notify the alerts are also posted to the configured Slack webhook.
Deliveries that fail are queued and retried on the next --notify.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (observability may be disabled)")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		out := cmd.OutOrStdout()
		if alertsJSON {
			if err := printJSON(out, alerts); err != nil {
				return err
			}
		} else if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts.")
		} else {
			fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
			for _, alert := range alerts {
				severity := strings.ToUpper(string(alert.Severity))
				fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
				fmt.Fprintf(out, "         triggered at %s\n\n", alert.TriggeredAt.Format("2006-01-02 15:04 UTC"))
			}
		}

		if !alertsNotify {
			return nil
		}
		return notifyAlerts(cmd.Context(), cmd, alerts)
	},
}

// notifyAlerts flushes earlier failed deliveries, then sends alerts. A
// failed send is queued in the outbox instead of failing the command.
func notifyAlerts(ctx context.Context, cmd *cobra.Command, alerts []observability.Alert) error {
	if Notifier == nil {
		return fmt.Errorf("notifications not configured: set notifications.enabled and notifications.slack_webhook_url in .pdbconfig")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if Outbox != nil {
		result, err := Outbox.Flush(ctx, deliverQueuedAlerts)
		if err != nil {
			return fmt.Errorf("flushing outbox: %w", err)
		}
		if result.Sent > 0 {
			fmt.Fprintf(out, "Delivered %d queued notification(s)\n", result.Sent)
		}
		if result.Failed > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d queued notification(s) still failing\n", result.Failed)
		}
	}

	if len(alerts) == 0 {
		return nil
	}
	if err := Notifier.Notify(ctx, alerts); err != nil {
		logEvent("alerts.notify.failed", map[string]any{"count": len(alerts), "error": err.Error()})
		if Outbox == nil {
			return fmt.Errorf("sending alerts: %w", err)
		}
		if qerr := Outbox.Queue(deliveryKindSlackAlerts, alerts); qerr != nil {
			return fmt.Errorf("sending alerts: %w (queueing also failed: %v)", err, qerr)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: sending alerts failed, queued for retry: %v\n", err)
		return nil
	}

	logEvent(observability.EventAlertsNotified, map[string]any{"count": len(alerts)})
	fmt.Fprintf(out, "Sent %d alert(s) to Slack\n", len(alerts))
	return nil
}

func deliverQueuedAlerts(ctx context.Context, d integration.Delivery) error {
	if d.Kind != deliveryKindSlackAlerts {
		return fmt.Errorf("unknown delivery kind %q", d.Kind)
	}
	var alerts []observability.Alert
	if err := json.Unmarshal(d.Payload, &alerts); err != nil {
		return fmt.Errorf("decoding queued alerts: %w", err)
	}
	if err := Notifier.Notify(ctx, alerts); err != nil {
		return err
	}
	logEvent(observability.EventAlertsNotified, map[string]any{"count": len(alerts), "queued": true})
	return nil
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Send alerts to the configured Slack webhook")
	alertsCmd.Flags().BoolVar(&alertsJSON, "json", false, "Output alerts as JSON")
	rootCmd.AddCommand(alertsCmd)
}

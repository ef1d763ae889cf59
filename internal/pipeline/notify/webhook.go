package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	dataset "analyzer-training/internal/dataset/domain"
)

// WebhookNotifier posts build summaries to a webhook so the training side can pick up new datasets.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string                `json:"msgtype"`
	Text    webhookText           `json:"text"`
	Build   *dataset.BuildSummary `json:"build,omitempty"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends the summary to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, summary dataset.BuildSummary) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: formatBuildMessage(summary)},
		Build:   &summary,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notifier: status %d", resp.StatusCode)
	}
	return nil
}

func formatBuildMessage(summary dataset.BuildSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Dataset Ready] %s\n", summary.Kind)
	fmt.Fprintf(&b, "Build: %s\n", summary.ID)
	if summary.Window != "" {
		fmt.Fprintf(&b, "Window: %s\n", summary.Window)
	}
	fmt.Fprintf(&b, "Rows: %d\n", summary.Rows)
	switch summary.Kind {
	case dataset.KindProcessed:
		fmt.Fprintf(&b, "Issues: current %d, voltage %d\n", summary.CurrentIssues, summary.VoltageIssues)
	case dataset.KindSynthetic:
		fmt.Fprintf(&b, "Anomalies: %d (seed %d)\n", summary.Anomalies, summary.Seed)
	}
	for _, artifact := range summary.Artifacts {
		fmt.Fprintf(&b, "Artifact: %s\n", artifact)
	}
	return strings.TrimSpace(b.String())
}

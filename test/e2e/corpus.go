// Package e2e provides end-to-end tests over a larger documentation corpus.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
)

// CorpusPage is one documentation page in the E2E corpus. Each page carries a
// unique signature phrase so queries can assert the correct page is retrieved.
type CorpusPage struct {
	SourceID string
	Title    string
	URL      string
	Content  string
}

// QueryCase defines a query and the source ID(s) that must appear in the
// retrieved chunks. At least one of ExpectedSources must be present.
type QueryCase struct {
	Query           string
	ExpectedSources []string
	Description     string
}

// Corpus holds pages and query cases for E2E tests.
type Corpus struct {
	Pages        []CorpusPage
	Cases        []QueryCase
	TotalPages   int
	TotalQueries int
}

// BuildCorpus returns a corpus of documentation pages with varied content and
// one query case per signature phrase.
func BuildCorpus() *Corpus {
	pages := buildPages()
	cases := buildQueryCases(pages)
	return &Corpus{
		Pages:        pages,
		Cases:        cases,
		TotalPages:   len(pages),
		TotalQueries: len(cases),
	}
}

func buildPages() []CorpusPage {
	topics := []struct {
		title   string
		phrase  string
		content string
	}{
		{"Agent Installation", "installing the monitoring agent", "The agent runs as a system service. Installing the monitoring agent requires admin rights and a restart."},
		{"Agent Upgrade", "upgrading the agent in place", "Upgrades preserve local configuration. Upgrading the agent in place keeps collected data intact."},
		{"API Keys", "rotating API keys", "API keys authenticate requests. Rotating API keys invalidates the old key after a grace period."},
		{"Webhook Delivery", "webhook retries with backoff", "Webhooks notify external systems. Webhook retries with backoff continue for up to 24 hours."},
		{"Rate Limits", "request rate limits per project", "The API enforces quotas. Request rate limits per project reset every minute."},
		{"Billing Cycles", "monthly billing invoice", "Charges accrue per usage. Monthly billing invoice is issued on the first of each month."},
		{"Data Retention", "retention period for metrics", "Old data is pruned automatically. Retention period for metrics defaults to 90 days."},
		{"Access Control", "role based permissions", "Access is scoped by role. Role based permissions separate viewers from admins."},
		{"Single Sign-On", "SAML single sign-on setup", "SSO delegates authentication. SAML single sign-on setup needs an identity provider metadata file."},
		{"Audit Events", "exporting audit events", "Every change is recorded. Exporting audit events streams them to object storage."},
		{"Alert Rules", "threshold alert conditions", "Alerts fire on conditions. Threshold alert conditions compare a metric against a limit."},
		{"Notification Channels", "routing alerts to channels", "Alerts reach people through channels. Routing alerts to channels supports email and chat."},
		{"Dashboards", "building custom dashboards", "Dashboards visualize metrics. Building custom dashboards uses a drag and drop editor."},
		{"Query Language", "metric query expressions", "Queries select and aggregate series. Metric query expressions support rate and percentile functions."},
		{"Log Ingestion", "shipping logs with the forwarder", "Logs arrive through a forwarder. Shipping logs with the forwarder batches and compresses lines."},
		{"Log Parsing", "parsing structured log fields", "Parsers extract fields at ingest time. Parsing structured log fields supports JSON and regex rules."},
		{"Trace Sampling", "head based trace sampling", "Not every trace is kept. Head based trace sampling decides at the root span."},
		{"Service Map", "dependency service map", "The map shows call relationships. Dependency service map is derived from trace data."},
		{"Uptime Checks", "external uptime probes", "Probes run from multiple regions. External uptime probes alert on consecutive failures."},
		{"Status Page", "public status page", "Incidents are communicated openly. Public status page updates subscribers automatically."},
		{"Incident Workflow", "acknowledging an incident", "Incidents move through states. Acknowledging an incident pauses escalation."},
		{"Escalation Policy", "escalation policy steps", "Unacknowledged alerts escalate. Escalation policy steps page the next responder in order."},
		{"On-Call Schedules", "on-call schedule rotations", "Schedules define coverage. On-call schedule rotations support overrides and handoffs."},
		{"Maintenance Windows", "silencing alerts during maintenance", "Planned work should not page. Silencing alerts during maintenance suppresses matching rules."},
		{"Terraform Provider", "managing resources with Terraform", "Configuration can live in code. Managing resources with Terraform covers dashboards and alert rules."},
		{"CLI Reference", "command line interface flags", "The CLI mirrors the API. Command line interface flags accept a config file and output format."},
		{"Python SDK", "Python client library", "SDKs wrap the REST API. Python client library handles pagination and retries."},
		{"Go SDK", "Go client library", "Idiomatic bindings are provided. Go client library returns typed errors and contexts."},
		{"Pagination", "cursor based pagination", "Large listings are paged. Cursor based pagination returns an opaque next token."},
		{"Error Codes", "API error code reference", "Errors carry machine-readable codes. API error code reference maps codes to remediation."},
		{"IP Allowlist", "restricting access by IP", "Network access can be restricted. Restricting access by IP uses CIDR ranges."},
		{"Data Encryption", "encryption at rest and in transit", "Customer data is protected. Encryption at rest and in transit uses managed keys."},
		{"Backup Export", "scheduled data export", "Data can leave the platform. Scheduled data export writes snapshots to a bucket."},
		{"Usage Metering", "tracking usage and quotas", "Consumption is measured continuously. Tracking usage and quotas shows projected overage."},
		{"Sandbox Environment", "testing in the sandbox", "A safe environment is available. Testing in the sandbox never sends real notifications."},
		{"Migration Guide", "migrating from the legacy agent", "The old agent is deprecated. Migrating from the legacy agent maps each setting to its replacement."},
	}

	out := make([]CorpusPage, 0, len(topics))
	for i, t := range topics {
		id := fmt.Sprintf("e2e-page-%03d", i+1)
		out = append(out, CorpusPage{
			SourceID: id,
			Title:    t.title,
			URL:      "https://docs.example.com/" + id,
			Content:  t.content,
		})
	}
	return out
}

func buildQueryCases(pages []CorpusPage) []QueryCase {
	phrases := []string{
		"installing the monitoring agent",
		"rotating API keys",
		"webhook retries with backoff",
		"monthly billing invoice",
		"retention period for metrics",
		"SAML single sign-on setup",
		"threshold alert conditions",
		"shipping logs with the forwarder",
		"head based trace sampling",
		"external uptime probes",
		"acknowledging an incident",
		"on-call schedule rotations",
		"managing resources with Terraform",
		"cursor based pagination",
		"restricting access by IP",
		"migrating from the legacy agent",
	}
	var cases []QueryCase
	for _, p := range phrases {
		for _, page := range pages {
			if strings.Contains(page.Content, p) {
				cases = append(cases, QueryCase{
					Query:           p,
					ExpectedSources: []string{page.SourceID},
					Description:     fmt.Sprintf("query %q should retrieve %s", p, page.SourceID),
				})
				break
			}
		}
	}
	return cases
}

// ToFragments converts the corpus pages to ingestion fragments.
func (c *Corpus) ToFragments() []models.Fragment {
	out := make([]models.Fragment, len(c.Pages))
	for i := range c.Pages {
		p := &c.Pages[i]
		out[i] = models.Fragment{
			SourceID:   p.SourceID,
			Title:      p.Title,
			URL:        p.URL,
			RawContent: p.Content,
		}
	}
	return out
}

package assemble

import "github.com/sells-group/proposal-cli/internal/model"

// Supported platform keys. Anything else falls back to hosted.
const (
	PlatformHosted = "hosted"
	PlatformBYOC   = "byoc"
)

// buildTerms returns one of the two fixed terms variants. No other
// platforms are supported.
func buildTerms(platform string) model.Terms {
	if platform == PlatformBYOC {
		return model.Terms{
			Platform:     PlatformBYOC,
			PaymentTerms: "50% on signature, 50% on production cutover",
			Fees: []string{
				"Client supplies and pays for all platform subscriptions directly",
				"Access provisioning delays beyond 5 business days pause the timeline",
			},
			Notes: []string{
				"Workflows are built in the client's own accounts and remain client property",
			},
		}
	}
	return model.Terms{
		Platform:     PlatformHosted,
		PaymentTerms: "40% on signature, 30% at build sign-off, 30% on production cutover",
		Fees: []string{
			"Platform hosting included for the first 12 months",
			"Volume overages billed at cost with 30 days notice",
		},
		Notes: []string{
			"Hosting renews annually unless cancelled 60 days before term end",
		},
	}
}

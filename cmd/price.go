package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/audit"
	"github.com/sells-group/proposal-cli/internal/pricing"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price an audit extract",
	Long:  "Runs the deterministic pricing engine over an audit extract and prints the full breakdown. No backend credentials or run ledger involved.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("price"); err != nil {
			return err
		}

		extractPath, _ := cmd.Flags().GetString("extract")
		outPath, _ := cmd.Flags().GetString("out")

		extract, err := audit.Load(extractPath)
		if err != nil {
			return err
		}

		rates, err := loadRates()
		if err != nil {
			return err
		}

		opts, err := pricingOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		breakdown, err := pricing.New(rates).Calculate(extract, opts)
		if err != nil {
			return eris.Wrap(err, "price")
		}

		zap.L().Info("price: breakdown ready",
			zap.String("client", extract.Client.Name),
			zap.Int64("subtotal", breakdown.Subtotal),
			zap.Int64("final_price", breakdown.FinalPrice),
		)

		return writeJSON(outPath, breakdown)
	},
}

// addPricingFlags registers the engine knobs shared by price and generate.
func addPricingFlags(c *cobra.Command) {
	c.Flags().String("timeline", "", "timeline pressure: standard, expedited, urgent, emergency")
	c.Flags().String("readiness", "", "client readiness: prepared, standard, needs_discovery, legacy_heavy")
	c.Flags().String("sensitivity", "", "data sensitivity override: standard, elevated, regulated (default inferred from industry)")
	c.Flags().String("commitment", "", "commitment discount tier: none, six_month, annual, multi_year")
	c.Flags().String("payment-terms", "", "payment terms discount: net30, net15, upfront")
	c.Flags().Bool("referral", false, "apply the referral discount")
	c.Flags().String("early-adopter", "", "early-adopter discount override: on or off (default from rate tables)")
}

// pricingOptionsFromFlags reads the shared pricing flags into engine
// options. Unknown table keys are left to the engine, which degrades them
// to neutral; only the early-adopter tri-state is validated here.
func pricingOptionsFromFlags(cmd *cobra.Command) (pricing.Options, error) {
	var opts pricing.Options
	opts.Timeline, _ = cmd.Flags().GetString("timeline")
	opts.Readiness, _ = cmd.Flags().GetString("readiness")
	opts.Sensitivity, _ = cmd.Flags().GetString("sensitivity")
	opts.Commitment, _ = cmd.Flags().GetString("commitment")
	opts.PaymentTerms, _ = cmd.Flags().GetString("payment-terms")
	opts.Referral, _ = cmd.Flags().GetBool("referral")

	switch ea, _ := cmd.Flags().GetString("early-adopter"); ea {
	case "":
	case "on":
		v := true
		opts.EarlyAdopter = &v
	case "off":
		v := false
		opts.EarlyAdopter = &v
	default:
		return opts, eris.Errorf("--early-adopter must be on or off, got %q", ea)
	}
	return opts, nil
}

func init() {
	priceCmd.Flags().String("extract", "", "path to the audit extract JSON (required)")
	priceCmd.Flags().String("out", "", "write the breakdown to a file instead of stdout")
	addPricingFlags(priceCmd)
	_ = priceCmd.MarkFlagRequired("extract")
	rootCmd.AddCommand(priceCmd)
}

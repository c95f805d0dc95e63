package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paycapture/internal/classification"
	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/config"
	"github.com/Veraticus/paycapture/internal/emitter"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/notification"
)

func classifyCmd() *cobra.Command {
	var (
		source  string
		title   string
		bigText string
	)

	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Check whether a notification text would be captured",
		Long: `Run a notification through normalization and classification without
deduplication or presentation, and report the extracted amount and note or
the reason it was rejected.`,
		Example: `  paycapture classify "支付成功 ￥88.00 超市购物"
  paycapture classify --source com.tencent.mm --title 微信支付 "已付款 ￥12.50"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			n := model.RawNotification{SourceID: source, Title: title, Text: args[0], BigText: bigText}
			report, err := classifyReport(cfg, n)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report)
			return err
		},
	}

	cmd.Flags().StringVar(&source, "source", config.AlipaySourceID, "source app identifier")
	cmd.Flags().StringVar(&title, "title", "", "notification title")
	cmd.Flags().StringVar(&bigText, "big-text", "", "expanded notification text")

	return cmd
}

// classifyReport renders the outcome of classifying n. Rejections are part of
// the report, not errors.
func classifyReport(cfg *config.Config, n model.RawNotification) (string, error) {
	classifier, err := classification.NewPaymentClassifier(classification.OptionsFromConfig(cfg))
	if err != nil {
		return "", fmt.Errorf("failed to create classifier: %w", err)
	}

	label, allowed := cfg.Labels()[n.SourceID]
	content := notification.Content(n)

	var b strings.Builder
	fmt.Fprintf(&b, "Content: %q\n", content)

	if !allowed {
		b.WriteString(cli.FormatWarning(fmt.Sprintf("Rejected: %s (source %s is not allow-listed)", model.ReasonNotApplicable, n.SourceID)))
		return b.String(), nil
	}
	if content == "" {
		b.WriteString(cli.FormatWarning(fmt.Sprintf("Rejected: %s (empty content)", model.ReasonNotApplicable)))
		return b.String(), nil
	}

	c, err := classifier.Classify(n.SourceID, content)
	if err != nil {
		if !common.IsRejection(err) {
			return "", err
		}
		b.WriteString(cli.FormatWarning(fmt.Sprintf("Rejected: %s (%v)", common.ReasonOf(err), err)))
		return b.String(), nil
	}

	event := emitter.FromConfig(cfg.Presentation).Emit(n.SourceID, label, *c, time.Now())
	fmt.Fprintf(&b, "Keyword: %s\nMatcher: %s\n", c.Keyword, c.Matcher)
	b.WriteString(cli.FormatSuccess("Captured " + cli.AmountStyle.Render(event.Amount.StringFixed(2))))
	b.WriteString("\n")
	b.WriteString(cli.RenderPrefill(event.Prefill()))
	return b.String(), nil
}

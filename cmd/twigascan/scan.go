package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"twigascan/internal/scan/history"
	"twigascan/internal/scan/service"
	"twigascan/internal/scan/verify"
)

func scanCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <content>...",
		Short: "Scan one or more payment strings",
		Long: `Scan parses and verifies each argument in order and prints the outcome
as JSON. History is kept in memory for the run, so repeating an identifier
shows the duplicate warnings.

Examples:
  twigascan scan "bitcoin:bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh?amount=0.001"
  twigascan scan --offline user@strike.me user@strike.me`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, loadSettings(v), args)
		},
	}

	cmd.Flags().Bool("offline", false, "skip DNS and TLS checks; every domain reports invalid")
	cmd.Flags().Duration("domain-check-timeout", verify.DefaultCheckTimeout, "timeout for each domain check")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

func runScan(cmd *cobra.Command, s settings, contents []string) error {
	log := newLogger(cmd, s)
	registry, err := loadRegistry(s)
	if err != nil {
		return err
	}

	var domains verify.DomainChecker = verify.StaticDomainChecker{}
	if !s.Offline {
		domains = verify.NewNetDomainChecker(verify.WithCheckTimeout(s.DomainCheckTimeout))
	}
	orch := verify.NewOrchestrator(registry, domains, verify.WithLogger(log))
	svc := service.New(orch, history.NewInMemoryStore(),
		service.WithProviderCatalog(registry),
		service.WithLogger(log),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, content := range contents {
		outcome, err := svc.ParseAndVerify(cmd.Context(), service.ScanRequest{Content: content})
		if err != nil {
			return fmt.Errorf("scan %q: %w", truncate(content, 40), err)
		}
		if err := enc.Encode(outcome); err != nil {
			return err
		}
	}
	return nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

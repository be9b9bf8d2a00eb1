package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenvestors/promobot/botapp"
	appconfig "github.com/tokenvestors/promobot/config"
	corecmd "github.com/tokenvestors/promobot/core/cmd"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:          "promobot",
		Short:        "Telegram token-promotion bot with crypto payments",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return corecmd.Run(corecmd.Options{
				DefaultConfigPath: cfgPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					return appconfig.Load(path)
				},
				Bootstrap: botapp.Bootstrap,
			})
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to the YAML config file")

	if err := root.Execute(); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

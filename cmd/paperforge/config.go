package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage paperforge configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default config file to the home directory.

The file references API keys through ${GROQ_API_KEY} and ${GOOGLE_API_KEY}
so secrets stay in the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDirPath)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if h.ConfigExists() {
			return fmt.Errorf("config already exists at %s", h.ConfigPath())
		}

		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

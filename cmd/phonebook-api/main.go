package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/phonebook-api/api/swagger"
)

// @title PhoneBook API
// @version 1.0.0
// @description Phone book directory with lazy paging and zodiac classification
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var rootCmd = &cobra.Command{
	Use:   "phonebook-api",
	Short: "PhoneBook HTTP API",
	Long: `PhoneBook serves a paged contact directory over HTTP.

Available commands:
  serve   - Start the HTTP server (default)
  migrate - Apply or roll back the database schema`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

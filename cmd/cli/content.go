package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alextreichler/embroiderystore/internal/models"
)

var (
	contentTitle string
	contentFile  string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the static content pages",
}

// storefront content set <slug> --title T --file body.html
var contentSetCmd = &cobra.Command{
	Use:   "set <slug>",
	Short: "Create or replace a content page (terms, privacy)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if contentTitle == "" {
			return fmt.Errorf("--title is required")
		}
		var body []byte
		var err error
		if contentFile == "" || contentFile == "-" {
			body, err = io.ReadAll(cmd.InOrStdin())
		} else {
			body, err = os.ReadFile(contentFile)
		}
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		_, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		page := &models.ContentPage{Slug: args[0], Title: contentTitle, Body: string(body)}
		if err := db.SavePage(page); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Page '%s' saved.\n", page.Slug)
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the FAQ entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListFAQ()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", e.ID, e.Question)
		}
		return nil
	},
}

func init() {
	contentSetCmd.Flags().StringVar(&contentTitle, "title", "", "page title")
	contentSetCmd.Flags().StringVar(&contentFile, "file", "", "file holding the page body; stdin when empty")
	contentCmd.AddCommand(contentSetCmd)
	contentCmd.AddCommand(contentListCmd)
}

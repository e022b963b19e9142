package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/playwright-community/playwright-go"
	"github.com/regform/regform/internal/fixture"
	"github.com/regform/regform/internal/scenarios"
	"github.com/regform/regform/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := scenarios.Catalog()
		switch strings.ToLower(listFormat) {
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(all)
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		case "table", "":
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tSCENARIO\tDEFECT")
			for _, s := range all {
				d := "-"
				if s.Defect != nil {
					state := "pinned"
					if s.Defect.Open {
						state = "open"
					}
					d = fmt.Sprintf("#%d (%s)", s.Defect.Number, state)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Group, s.Name, d)
			}
			return w.Flush()
		default:
			return fmt.Errorf("unknown format %q (table, json, yaml)", listFormat)
		}
	},
}

var defectsCmd = &cobra.Command{
	Use:   "defects",
	Short: "List the known defects of the form",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BUG\tSTATE\tSUMMARY")
		for _, d := range scenarios.Defects() {
			state := "pinned"
			if d.Open {
				state = "open"
			}
			fmt.Fprintf(w, "#%d\t%s\t%s\n", d.Number, state, d.Summary)
		}
		return w.Flush()
	},
}

var (
	serveAddr  string
	serveFixed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a local replica of the bugs registration form",
	Long: `Serves the replica at http://<addr>/bugs-form. By default it reproduces
the live form's defects; --fixed serves a form without them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := fixture.LiveQuirks()
		if serveFixed {
			q = fixture.Quirks{}
		}
		srv, err := fixture.NewServer(q, logger.Named("fixture"))
		if err != nil {
			return err
		}
		return srv.ListenAndServe(cmd.Context(), serveAddr)
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the Playwright driver and Chromium",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright: %w", err)
		}
		fmt.Println("Playwright driver and Chromium installed")
		return nil
	},
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()
		if versionJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		fmt.Println("regform " + info.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "output format: table, json or yaml")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8090", "listen address")
	serveCmd.Flags().BoolVar(&serveFixed, "fixed", false, "serve the form without its defects")
}

// Command linkcheck crawls one or more seed URLs and reports broken
// links and missing anchor fragments.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/5l1v3r1/linkcheck"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds and executes the cobra command, returning the process
// exit code (0 = no broken links, 1 = broken links found, 2 = internal
// error), per §6.
func run(args []string) int {
	var (
		connections   int
		checkExternal bool
		noExternal    bool
		globs         []string
		timeout       time.Duration
		jsonOut       bool

		result   *linkcheck.CrawlResult
		crawlErr error
	)

	rootCmd := &cobra.Command{
		Use:           "linkcheck <url> [url...]",
		Short:         "Crawl seed URLs and report broken links",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, crawlErr = linkcheck.Crawl(args, globs, linkcheck.Options{
				NumWorkers:      connections,
				RequestTimeout:  timeout,
				DisableExternal: noExternal || !checkExternal,
			})
			return crawlErr
		},
	}

	rootCmd.Flags().IntVarP(&connections, "connections", "c", linkcheck.DefaultNumWorkers, "Number of concurrent fetch workers")
	rootCmd.Flags().BoolVar(&checkExternal, "external", true, "Also check external links (on by default)")
	rootCmd.Flags().BoolVar(&noExternal, "no-external", false, "Skip fetching external links (checked by default)")
	rootCmd.Flags().StringSliceVar(&globs, "glob", nil, "Host-glob pattern marking a URL internal (repeatable); defaults to each seed's own prefix")
	rootCmd.Flags().DurationVar(&timeout, "timeout", linkcheck.DefaultRequestTimeout, "Per-request timeout")
	rootCmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "Print the crawl result as JSON")
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		return 2
	}
	if result == nil {
		// --help or similar: nothing to report.
		return 0
	}

	if jsonOut {
		if err := printJSON(os.Stdout, result); err != nil {
			log.Println(err)
			return 2
		}
	} else {
		printReport(os.Stdout, result)
	}

	if len(result.Broken) > 0 {
		return 1
	}
	return 0
}

func printJSON(w *os.File, result *linkcheck.CrawlResult) error {
	destinations := make([]map[string]any, 0, len(result.Destinations))
	for _, d := range result.Destinations {
		destinations = append(destinations, d.ToMap())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"destinations":   destinations,
		"brokenCount":    len(result.Broken),
		"anchorWarnings": result.AnchorWarnings,
	})
}

func printReport(w *os.File, result *linkcheck.CrawlResult) {
	for _, d := range result.Destinations {
		status := "unsupported scheme"
		switch {
		case d.IsInvalid:
			status = "invalid url"
		case d.DidNotConnect:
			status = "did not connect"
		case d.StatusCode != nil:
			status = fmt.Sprintf("%d", *d.StatusCode)
		}
		fmt.Fprintf(w, "%s, %s\n", d.URL, status)
	}

	if len(result.Broken) > 0 {
		fmt.Fprintf(w, "\n%d broken link(s):\n", len(result.Broken))
		for _, d := range result.Broken {
			fmt.Fprintf(w, "  %s\n", d.URL)
		}
	}

	if len(result.AnchorWarnings) > 0 {
		fmt.Fprintf(w, "\n%d anchor warning(s):\n", len(result.AnchorWarnings))
		for _, warn := range result.AnchorWarnings {
			fmt.Fprintf(w, "  %s -> %s#%s\n", warn.OriginURL, warn.TargetURL, warn.Fragment)
		}
	}
}

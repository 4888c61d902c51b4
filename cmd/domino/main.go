// Command domino inspects, fills and dumps HTML forms described by definition
// files, against a saved page or a live URL.
//
//	domino forms   --defs ./forms
//	domino inspect --defs ./forms --form person --page edit.html
//	domino fill    --defs ./forms --form person --url http://localhost:8080/people/1/edit --submit
//	domino dump    --defs ./forms --form person --page edit.html
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd(os.Stdout, surveyPrompter{}).Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	out      io.Writer
	prompter Prompter
	logger   *zap.Logger

	verbose  bool
	defs     string
	formName string
	page     string
	url      string
	asJSON   bool
	submit   bool
}

func newRootCmd(out io.Writer, prompter Prompter) *cobra.Command {
	c := &cli{out: out, prompter: prompter, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "domino",
		Short:        "Work with HTML forms through declarative definitions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !c.verbose {
				return nil
			}
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.defs, "defs", "forms", "directory holding YAML/JSON form definitions")

	formFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&c.formName, "form", "", "definition name")
		cmd.Flags().StringVar(&c.page, "page", "", "saved HTML page to load")
		cmd.Flags().StringVar(&c.url, "url", "", "page URL to load")
		_ = cmd.MarkFlagRequired("form")
		cmd.MarkFlagsMutuallyExclusive("page", "url")
		cmd.MarkFlagsOneRequired("page", "url")
	}

	formsCmd := &cobra.Command{
		Use:   "forms",
		Short: "List the loaded form definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runForms()
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print every field value of a form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context())
		},
	}
	formFlags(inspectCmd)
	inspectCmd.Flags().BoolVar(&c.asJSON, "json", false, "print values as JSON")

	fillCmd := &cobra.Command{
		Use:   "fill",
		Short: "Prompt for every field and write the answers into the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFill(cmd.Context())
		},
	}
	formFlags(fillCmd)
	fillCmd.Flags().BoolVar(&c.submit, "submit", false, "submit the form after filling (requires --url)")
	fillCmd.Flags().BoolVar(&c.asJSON, "json", false, "print values as JSON")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the sanitised markup of a form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDump(cmd.Context())
		},
	}
	formFlags(dumpCmd)

	root.AddCommand(formsCmd, inspectCmd, fillCmd, dumpCmd)
	return root
}

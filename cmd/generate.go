package cmd

import (
	"fmt"
	"os"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outputFile     string
	outputDir      string
	templateDir    string
	addExampleData bool
	jiraAccessKey  string
	jiraServerURL  string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [openapi-spec-file]",
	Short: "Generate the Robot Framework test artifacts",
	Long: `Generate the Excel test matrix, the Robot Framework DataDriver test
suite and the includes resource file from an OpenAPI specification.

When a Jira access key is provided, one Jira "Test" ticket is created
per API operation and all of them are linked under a new "Test
Execution" ticket before the output files are written; the ticket keys
show up in the [Tags] column of both artifacts.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := pipeline.Options{
			SpecFile:       args[0],
			OutputName:     outputFile,
			OutputDir:      viper.GetString("outputdir"),
			TemplateDir:    viper.GetString("templatedir"),
			AddExampleData: addExampleData,
			JiraAccessKey:  jiraAccessKey,
			JiraServerURL:  viper.GetString("jira.server_url"),
		}

		if err := pipeline.Run(opts, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&outputFile, "outputfile", "export", "Name of the Robot / Excel output file (without file extension)")
	generateCmd.Flags().StringVar(&outputDir, "outputdir", "output", "Name of the target output directory")
	generateCmd.Flags().StringVar(&templateDir, "templatedir", "templates", "Directory containing the output templates")
	generateCmd.Flags().BoolVar(&addExampleData, "add-example-data", false, "Seed matrix cells with a variable's example data (if present in the OpenAPI spec)")
	generateCmd.Flags().StringVar(&jiraAccessKey, "jira-access-key", "", "Jira Basic Auth-encoded access key; enables ticket mirroring")
	generateCmd.Flags().StringVar(&jiraServerURL, "jira-server-url", "https://jira.acme.com:443", "Jira server base URL")

	// Config file values back the flags; explicit flags win.
	_ = viper.BindPFlag("outputdir", generateCmd.Flags().Lookup("outputdir"))
	_ = viper.BindPFlag("templatedir", generateCmd.Flags().Lookup("templatedir"))
	_ = viper.BindPFlag("jira.server_url", generateCmd.Flags().Lookup("jira-server-url"))
}

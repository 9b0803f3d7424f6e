package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/cnote/internal/config"
	"github.com/skelly-dev/cnote/internal/languages"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cnote",
		Short: "Find and filter files by the tags declared in their first lines",
		Long: `cnote reads tags from the first or second line of plain-text files
("#: draft important", optionally inside a comment) and from per-directory
.tag manifests ("notes.md #: draft"), then lists files by tag.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", config.FileName, "Path to the config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("color", "", "Color output: auto|always|never (default from config)")

	// Query Commands
	lsCmd := &cobra.Command{
		Use:   "ls [paths...]",
		Short: "List tagged files",
		RunE:  RunList,
	}
	addIndexFlags(lsCmd)
	lsCmd.Flags().Bool("all", false, "Only list files carrying every --tag")
	lsCmd.Flags().Bool("watch", false, "Re-run the listing whenever a watched file changes")

	tagsCmd := &cobra.Command{
		Use:   "tags [paths...]",
		Short: "List tags and the files carrying them",
		RunE:  RunTags,
	}
	addIndexFlags(tagsCmd)
	tagsCmd.Flags().Bool("all", false, "Only count files carrying every --tag")

	showCmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Show the tags declared by one file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunShow,
	}
	showCmd.Flags().Bool("json", false, "Print machine-readable output")

	checkCmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify that tag lines in source files sit inside comments",
		Long: "Verify that tag lines in source files sit inside comments.\n\nSupported languages: " +
			strings.Join(languages.NewDefaultRegistry().Names(), ", "),
		RunE:  RunCheck,
	}
	checkCmd.Flags().BoolP("recursive", "r", false, "Descend into subdirectories")
	checkCmd.Flags().Bool("strict", false, "Exit with an error when warnings are found")
	checkCmd.Flags().Bool("json", false, "Print machine-readable summary")

	// Edit Commands
	tagCmd := &cobra.Command{
		Use:   "tag <file> <tags...>",
		Short: "Add tags to a file's directory manifest",
		Args:  cobra.MinimumNArgs(2),
		RunE:  RunTag,
	}
	tagCmd.Flags().Bool("json", false, "Print machine-readable summary")

	untagCmd := &cobra.Command{
		Use:   "untag <file> <tags...>",
		Short: "Remove tags from a file's directory manifest",
		Args:  cobra.MinimumNArgs(2),
		RunE:  RunUntag,
	}
	untagCmd.Flags().Bool("json", false, "Print machine-readable summary")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cnote %s\n", version)
		},
	}

	rootCmd.AddCommand(
		lsCmd,
		tagsCmd,
		showCmd,
		checkCmd,
		tagCmd,
		untagCmd,
		versionCmd,
	)

	return rootCmd
}

func addIndexFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("tag", "t", []string{}, "Only keep files carrying any of these tags")
	cmd.Flags().BoolP("recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().String("format", "", "Output format: text|json|jsonl (default from config)")
	cmd.Flags().Bool("json", false, "Shorthand for --format json")
	cmd.Flags().Bool("relative", true, "Print paths relative to the working directory")
}

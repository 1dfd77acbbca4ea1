package cli

import (
	"flag"
	"fmt"
	"os"
)

func newMergeCommand() *Command {
	cmd := &Command{
		Name:        "merge",
		Description: "Merge parent/child overrides onto an edition's defaults",
		Flags:       flag.NewFlagSet("merge", flag.ExitOnError),
		Run:         runMerge,
	}

	cmd.Flags.String("registry", "http://localhost:8080", "Feature resolver URL")
	cmd.Flags.String("schema", "", "Registered schema name")
	cmd.Flags.String("edition", "", "Edition to resolve before merging")
	cmd.Flags.String("min-edition", "", "Minimum edition of the backing defaults table")
	cmd.Flags.String("max-edition", "", "Maximum edition of the backing defaults table")
	cmd.Flags.String("parent-file", "", "Path to a protobuf text-format file of parent overrides")
	cmd.Flags.String("child-file", "", "Path to a protobuf text-format file of child overrides")

	return cmd
}

func runMerge(args []string) error {
	cmd := newMergeCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	registry := cmd.Flags.Lookup("registry").Value.String()
	schema := cmd.Flags.Lookup("schema").Value.String()
	edition := cmd.Flags.Lookup("edition").Value.String()
	minEdition := cmd.Flags.Lookup("min-edition").Value.String()
	maxEdition := cmd.Flags.Lookup("max-edition").Value.String()
	if schema == "" || edition == "" || minEdition == "" || maxEdition == "" {
		return fmt.Errorf("--schema, --edition, --min-edition and --max-edition are required")
	}

	parentText, err := readOptionalFile(cmd.Flags.Lookup("parent-file").Value.String())
	if err != nil {
		return err
	}
	childText, err := readOptionalFile(cmd.Flags.Lookup("child-file").Value.String())
	if err != nil {
		return err
	}

	req := map[string]string{
		"schema_name":     schema,
		"edition":         edition,
		"minimum_edition": minEdition,
		"maximum_edition": maxEdition,
		"parent_text":     parentText,
		"child_text":      childText,
	}

	var result struct {
		Edition  string `json:"edition"`
		Features string `json:"features"`
	}
	if err := postJSON(registry, "/v1/merge", req, &result); err != nil {
		return err
	}

	fmt.Println(result.Features)
	return nil
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

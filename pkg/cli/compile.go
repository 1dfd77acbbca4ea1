package cli

import (
	"flag"
	"fmt"
)

func newCompileCommand() *Command {
	cmd := &Command{
		Name:        "compile",
		Description: "Compile a FeatureSetDefaults table for a schema and edition range",
		Flags:       flag.NewFlagSet("compile", flag.ExitOnError),
		Run:         runCompile,
	}

	cmd.Flags.String("registry", "http://localhost:8080", "Feature resolver URL")
	cmd.Flags.String("schema", "", "Registered schema name")
	cmd.Flags.String("min-edition", "", "Minimum edition supported by the compiled table")
	cmd.Flags.String("max-edition", "", "Maximum edition supported by the compiled table")

	return cmd
}

func runCompile(args []string) error {
	cmd := newCompileCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	registry := cmd.Flags.Lookup("registry").Value.String()
	schema := cmd.Flags.Lookup("schema").Value.String()
	minEdition := cmd.Flags.Lookup("min-edition").Value.String()
	maxEdition := cmd.Flags.Lookup("max-edition").Value.String()
	if schema == "" || minEdition == "" || maxEdition == "" {
		return fmt.Errorf("--schema, --min-edition and --max-edition are required")
	}

	req := map[string]string{
		"schema_name":     schema,
		"minimum_edition": minEdition,
		"maximum_edition": maxEdition,
	}

	var result map[string]interface{}
	if err := postJSON(registry, "/v1/compile", req, &result); err != nil {
		return err
	}

	rows := 0
	if defaults, ok := result["defaults"].([]interface{}); ok {
		rows = len(defaults)
	}
	fmt.Printf("compiled %d edition rows for %q [%s, %s]\n", rows, schema, minEdition, maxEdition)
	return nil
}

package cli

import (
	"flag"
	"fmt"
)

func newResolveCommand() *Command {
	cmd := &Command{
		Name:        "resolve",
		Description: "Resolve the effective feature set for a schema and edition",
		Flags:       flag.NewFlagSet("resolve", flag.ExitOnError),
		Run:         runResolve,
	}

	cmd.Flags.String("registry", "http://localhost:8080", "Feature resolver URL")
	cmd.Flags.String("schema", "", "Registered schema name")
	cmd.Flags.String("edition", "", "Edition to resolve")
	cmd.Flags.String("min-edition", "", "Minimum edition of the backing defaults table")
	cmd.Flags.String("max-edition", "", "Maximum edition of the backing defaults table")

	return cmd
}

func runResolve(args []string) error {
	cmd := newResolveCommand()
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

	req := map[string]string{
		"schema_name":     schema,
		"edition":         edition,
		"minimum_edition": minEdition,
		"maximum_edition": maxEdition,
	}

	var result struct {
		Edition  string `json:"edition"`
		Features string `json:"features"`
	}
	if err := postJSON(registry, "/v1/resolve", req, &result); err != nil {
		return err
	}

	fmt.Println(result.Features)
	return nil
}

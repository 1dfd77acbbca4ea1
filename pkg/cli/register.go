package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

func newRegisterCommand() *Command {
	cmd := &Command{
		Name:        "register",
		Description: "Register a feature container schema from a file manifest",
		Flags:       flag.NewFlagSet("register", flag.ExitOnError),
		Run:         runRegister,
	}

	cmd.Flags.String("registry", "http://localhost:8080", "Feature resolver URL")
	cmd.Flags.String("manifest", "", "Path to a JSON manifest describing the schema registration request")

	return cmd
}

// registerManifest mirrors pkg/api's registerSchemaRequest wire shape.
type registerManifest struct {
	Name            string            `json:"name"`
	Files           map[string]string `json:"files"`
	EntryFile       string            `json:"entry_file"`
	BaseMessage     string            `json:"base_message"`
	ExtensionFields []string          `json:"extension_fields"`
	Annotations     string            `json:"annotations"`
}

func runRegister(args []string) error {
	cmd := newRegisterCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	registry := cmd.Flags.Lookup("registry").Value.String()
	manifestPath := cmd.Flags.Lookup("manifest").Value.String()
	if manifestPath == "" {
		return fmt.Errorf("--manifest is required")
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	var manifest registerManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	var result map[string]interface{}
	if err := postJSON(registry, "/v1/schemas", manifest, &result); err != nil {
		return err
	}

	fmt.Printf("registered schema %q\n", manifest.Name)
	return nil
}

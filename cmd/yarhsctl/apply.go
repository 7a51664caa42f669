package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newApplyCmd(serverAddr *string) *cobra.Command {
	var file, resourceType, versionInfo string
	var force bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "POST a resource (YAML or JSON) to the control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("-f/--file is required")
			}
			if resourceType == "" {
				return fmt.Errorf("--type is required (listeners|routes|http|logging|performance|vhosts)")
			}
			return applyFile(*serverAddr, resourceType, file, versionInfo, force)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a YAML or JSON resource file")
	cmd.Flags().StringVar(&resourceType, "type", "", "Resource type slug")
	cmd.Flags().StringVar(&versionInfo, "version-info", "", "Optimistic-lock token (blank skips the check)")
	cmd.Flags().BoolVar(&force, "force", false, "Report both listeners as changed even if the address is unchanged (a listener already bound to the requested address is not rebound)")
	return cmd
}

func applyFile(serverAddr, resourceType, file, versionInfo string, force bool) error {
	//nolint:gosec // operator-supplied path
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	var resource any
	if err := yaml.Unmarshal(raw, &resource); err != nil {
		return fmt.Errorf("failed to parse %s as YAML/JSON: %w", file, err)
	}
	resourceJSON, err := json.Marshal(resource)
	if err != nil {
		return fmt.Errorf("failed to re-encode resource as JSON: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"resources":     []json.RawMessage{resourceJSON},
		"version_info":  versionInfo,
		"force_restart": force,
	})
	if err != nil {
		return fmt.Errorf("failed to build request body: %w", err)
	}

	url := serverAddr + "/v1/discovery:" + resourceType
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body)) //nolint:noctx // short-lived CLI invocation
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := printIndentedJSON(respBody); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server rejected update: %s", resp.Status)
	}
	return nil
}

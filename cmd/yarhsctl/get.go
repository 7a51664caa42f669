package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newGetCmd(serverAddr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get [type]",
		Short: "Fetch a resource (or the full snapshot, with no argument) from the control plane",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/v1/discovery"
			if len(args) == 1 {
				path = "/v1/discovery:" + args[0]
			}
			return fetchAndPrint(*serverAddr + path)
		},
	}
}

func fetchAndPrint(url string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url) //nolint:noctx // short-lived CLI invocation
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s: %s", resp.Status, string(body))
	}
	return printIndentedJSON(body)
}

func printIndentedJSON(body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		// Not JSON (shouldn't happen); fall back to raw output.
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(buf.String())
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daapshare/internal/dmap"
)

func newDumpCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:         "dump <url>",
		Short:       "Fetch a share response and print the decoded tag-tree",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := fetchTagged(cmd.Context(), args[0], timeout)
			if err != nil {
				return err
			}
			codec := dmap.NewCodec(dmap.DefaultRegistry(), nil)
			nodes, err := codec.Decode(body)
			if err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, n := range nodes {
				writeTree(out, codec.Registry(), n, 0)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}

func fetchTagged(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func writeTree(w io.Writer, registry dmap.Registry, n dmap.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	name := "?"
	if entry, err := registry.Lookup(n.Tag); err == nil {
		name = fmt.Sprintf("%s, type %d", entry.Name, entry.Kind.WireType())
	}

	switch {
	case n.IsContainer():
		fmt.Fprintf(w, "%s%s (%s) [%d]\n", indent, n.Tag, name, n.Len())
		for _, child := range n.Value.Nodes() {
			writeTree(w, registry, child, depth+1)
		}
	case n.Value.IsNull():
		fmt.Fprintf(w, "%s%s (%s) <null>\n", indent, n.Tag, name)
	default:
		if num, ok := n.Value.Uint(); ok {
			fmt.Fprintf(w, "%s%s (%s) = %d\n", indent, n.Tag, name, num)
		} else if text, ok := n.Value.Text(); ok {
			fmt.Fprintf(w, "%s%s (%s) = %q\n", indent, n.Tag, name, text)
		}
	}
}

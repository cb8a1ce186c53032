package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ZaguanLabs/autolocale"
	"github.com/ZaguanLabs/autolocale/processor"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Show whether strings would be translated",
		Long: `Show whether strings would be translated, and if not, which rule
rejected them. With no arguments, one string per line is read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					texts = append(texts, scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			for _, text := range texts {
				reason := autolocale.Classify(text)
				if reason == autolocale.SkipNone {
					fmt.Fprintf(out, "translate  %q\n", text)
				} else {
					fmt.Fprintf(out, "skip:%-9s %q\n", reason, text)
				}
			}
			return nil
		},
	}
}

// runDryRun lists the strings a translate run would send.
func runDryRun(w io.Writer, input, contentType string, jsonOut bool) error {
	var proc autolocale.ContentProcessor = processor.NewHTMLProcessor()
	if contentType == "json" {
		proc = processor.NewJSONProcessor(nil)
	}

	_, nodes, err := proc.Extract(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if jsonOut {
		texts := make([]string, len(nodes))
		for i, n := range nodes {
			texts[i] = n.Text
		}
		return writeJSON(w, struct {
			NodeCount int      `json:"node_count"`
			Texts     []string `json:"texts"`
		}{len(nodes), texts})
	}

	fmt.Fprintf(w, "Found %d translatable strings:\n\n", len(nodes))
	for i, node := range nodes {
		text := node.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "%3d. %q\n", i+1, text)
		if node.Context != "" {
			fmt.Fprintf(w, "     %s\n", node.Context)
		}
	}
	return nil
}

// shapedJSON returns a JSON processor with the default field policy rooted at
// shape.
func shapedJSON(shape string) autolocale.ContentProcessor {
	return processor.NewJSONProcessor(nil).ForShape(shape)
}

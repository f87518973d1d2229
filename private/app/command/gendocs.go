// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// headers shifts the cobra generated headings up by one level so that every
// page has a single top level heading.
var headers = []struct {
	Search  *regexp.Regexp
	Replace string
}{
	{Search: regexp.MustCompile("(?m)^## "), Replace: "# "},
	{Search: regexp.MustCompile("(?m)^### "), Replace: "## "},
	{Search: regexp.MustCompile("(?m)^#### "), Replace: "### "},
}

// NewGendocs returns a hidden command that writes the markdown reference of
// all commands to a directory.
func NewGendocs(pather Pather) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "gendocs <directory>",
		Short:   "Generate documentation",
		Example: fmt.Sprintf("  %s gendocs doc/command", pather.CommandPath()),
		Args:    cobra.ExactArgs(1),
		Hidden:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Root().DisableAutoGenTag = true

			directory := args[0]
			if err := os.MkdirAll(directory, 0755); err != nil {
				return serrors.Wrap("creating directory", err, "dir", directory)
			}
			if err := genMarkdownTree(cmd.Root(), directory); err != nil {
				return serrors.Wrap("generating documentation", err, "dir", directory)
			}
			return nil
		},
	}
	return cmd
}

func genMarkdownTree(cmd *cobra.Command, dir string) error {
	var children []*cobra.Command
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if err := genMarkdownTree(c, dir); err != nil {
			return err
		}
		children = append(children, c)
	}

	var buf bytes.Buffer
	if err := doc.GenMarkdownCustom(cmd, &buf, fileName); err != nil {
		return err
	}
	if len(children) != 0 {
		buf.WriteString("\n## Commands\n\n")
		for _, c := range children {
			fmt.Fprintf(&buf, "* [%s](%s) - %s\n", c.CommandPath(), fileName(c.CommandPath()),
				c.Short)
		}
	}

	raw := buf.Bytes()
	for _, h := range headers {
		raw = h.Search.ReplaceAll(raw, []byte(h.Replace))
	}
	return os.WriteFile(filepath.Join(dir, fileName(cmd.CommandPath())), raw, 0666)
}

// fileName returns the markdown file name of a command path, or of a link
// generated by cobra that already carries the extension.
func fileName(name string) string {
	name = strings.TrimSuffix(name, ".md")
	return strings.ReplaceAll(name, " ", "_") + ".md"
}

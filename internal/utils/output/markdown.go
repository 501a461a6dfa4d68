package output

import (
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"

	"github.com/law-makers/datalayer/internal/schema"
)

// WriteMarkdown renders the table as HTML and converts it to a
// GitHub-flavoured Markdown table.
func WriteMarkdown(w io.Writer, table *schema.Table) error {
	var sb strings.Builder
	if err := html.Render(&sb, TableNode(table)); err != nil {
		return err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	mdStr, err := converter.ConvertString(sb.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.TrimSpace(mdStr)+"\n")
	return err
}

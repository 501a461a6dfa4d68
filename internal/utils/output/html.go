package output

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/law-makers/datalayer/internal/schema"
)

// TableNode builds a <table> with a header row of titles and one row per
// record.
func TableNode(table *schema.Table) *html.Node {
	tbl := element(atom.Table)

	thead := element(atom.Thead)
	headRow := element(atom.Tr)
	for _, title := range table.Header.Titles() {
		headRow.AppendChild(cell(atom.Th, title))
	}
	thead.AppendChild(headRow)
	tbl.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range table.Rows {
		tr := element(atom.Tr)
		for _, value := range row.Strings() {
			tr.AppendChild(cell(atom.Td, value))
		}
		tbody.AppendChild(tr)
	}
	tbl.AppendChild(tbody)
	return tbl
}

// WriteHTML writes a standalone HTML document containing the table.
func WriteHTML(w io.Writer, table *schema.Table) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	head.AppendChild(cell(atom.Title, "dataLayer events"))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(TableNode(table))
	root.AppendChild(body)
	doc.AppendChild(root)

	if err := html.Render(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func cell(a atom.Atom, text string) *html.Node {
	n := element(a)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

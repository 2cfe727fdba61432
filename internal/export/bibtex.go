package export

import (
	"fmt"
	"strings"

	"paper_summaries_go_backend/internal/models"

	"github.com/nickng/bibtex"
)

// CiteKey builds a key of the form <first author surname><year><first title word>.
func CiteKey(p *models.Paper) string {
	var surname string
	if len(p.Authors) > 0 {
		parts := strings.Fields(p.Authors[0])
		if len(parts) > 0 {
			surname = parts[len(parts)-1]
		}
	}
	var word string
	for _, w := range strings.Fields(p.Title) {
		if len(keyFragment(w)) > 3 {
			word = w
			break
		}
	}
	if word == "" && len(strings.Fields(p.Title)) > 0 {
		word = strings.Fields(p.Title)[0]
	}

	key := keyFragment(surname)
	if !p.PublicationDate.IsZero() {
		key += fmt.Sprint(p.PublicationDate.Year())
	}
	key += keyFragment(word)
	if key == "" {
		key = "paper" + p.ID
	}
	return key
}

func keyFragment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// bibValue drops braces so user text cannot unbalance the entry.
func bibValue(s string) bibtex.BibConst {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return bibtex.NewBibConst(strings.Join(strings.Fields(s), " "))
}

// BibTeX renders the paper as a single @article entry.
func BibTeX(p *models.Paper) string {
	entry := bibtex.NewBibEntry("article", CiteKey(p))
	entry.AddField("title", bibValue(p.Title))
	entry.AddField("author", bibValue(strings.Join(p.Authors, " and ")))
	if !p.PublicationDate.IsZero() {
		entry.AddField("year", bibtex.NewBibConst(fmt.Sprint(p.PublicationDate.Year())))
		entry.AddField("month", bibtex.NewBibConst(strings.ToLower(p.PublicationDate.Month().String()[:3])))
	}
	entry.AddField("abstract", bibValue(p.Abstract))
	entry.AddField("keywords", bibValue(string(p.Category)))
	entry.AddField("note", bibValue(p.Summary.Takeaway))

	bib := bibtex.NewBibTex()
	bib.AddEntry(entry)
	return bib.String()
}

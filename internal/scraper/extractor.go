package scraper

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/sources"
)

const minParagraphChars = 30

var boilerplateClasses = []string{"reference", "navbox", "infobox"}

// Extract parses encyclopedia markup with the default selectors.
func Extract(markup []byte) (domain.ScrapedArticle, error) {
	return ExtractWith(sources.Wikipedia(), markup)
}

// ExtractWith parses markup using the selectors of src.
func ExtractWith(src sources.Source, markup []byte) (domain.ScrapedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return domain.ScrapedArticle{}, fmt.Errorf("%w: parse html: %v", ErrParseFailed, err)
	}

	titleSel, contentSel := src.TitleSelector, src.ContentSelector
	if titleSel == "" {
		titleSel = sources.DefaultTitleSelector
	}
	if contentSel == "" {
		contentSel = sources.DefaultContentSelector
	}

	title := strings.TrimSpace(doc.Find(titleSel).First().Text())
	if title == "" {
		return domain.ScrapedArticle{}, fmt.Errorf("%w: title not found", ErrParseFailed)
	}

	content := doc.Find(contentSel).First()
	if content.Length() == 0 {
		return domain.ScrapedArticle{}, fmt.Errorf("%w: content not found", ErrParseFailed)
	}

	var paragraphs []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if utf8.RuneCountInString(text) <= minParagraphChars {
			return
		}
		if insideBoilerplate(p, content) {
			return
		}
		paragraphs = append(paragraphs, text)
	})
	text := strings.Join(paragraphs, "\n")

	var headings []string
	content.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		if t := strings.TrimSpace(h.Text()); t != "" {
			headings = append(headings, t)
		}
	})
	if len(headings) > 0 {
		text = strings.Join(headings, "\n") + "\n\n" + text
	}

	if strings.TrimSpace(text) == "" {
		return domain.ScrapedArticle{}, fmt.Errorf("%w: no text extracted", ErrParseFailed)
	}

	return domain.ScrapedArticle{Title: title, Text: text}, nil
}

// insideBoilerplate only looks at div wrappers below the content root, so page
// level classes on <body> or the root itself never drop article text.
func insideBoilerplate(sel, content *goquery.Selection) bool {
	found := false
	sel.ParentsUntilSelection(content).Filter("div").EachWithBreak(func(_ int, parent *goquery.Selection) bool {
		class, ok := parent.Attr("class")
		if !ok {
			return true
		}
		class = strings.ToLower(class)
		for _, marker := range boilerplateClasses {
			if strings.Contains(class, marker) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

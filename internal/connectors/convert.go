package connectors

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
)

var spaceRun = regexp.MustCompile(`\s+`)

// InquiryText renders a raw RFC 5322 message as the plain-text inquiry
// format the extraction stage reads: a From/Subject preamble followed by
// the body, with readable text from PDF attachments appended.
func InquiryText(raw []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse mail envelope: %w", err)
	}

	var b strings.Builder
	if from := env.GetHeader("From"); from != "" {
		fmt.Fprintf(&b, "From: %s\n", from)
	}
	if subject := env.GetHeader("Subject"); subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", subject)
	}
	b.WriteString("\n")

	body := strings.TrimSpace(env.Text)
	if body == "" && env.HTML != "" {
		body = htmlToText(env.HTML)
	}
	b.WriteString(body)
	b.WriteString("\n")

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			continue
		}
		text, err := pdfToText(att.Content)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\nAttachment: %s\n%s\n", filename, text)
	}

	return b.String(), nil
}

// htmlToText walks block-level elements so that each table row or
// paragraph lands on its own line, which keeps per-line quantity
// extraction working on HTML-only mail.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style,head").Remove()

	lines := []string{}
	doc.Find("p, li, tr, h1, h2, h3, blockquote").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Is("p, li, tr, h1, h2, h3, blockquote") {
			return
		}
		line := strings.TrimSpace(spaceRun.ReplaceAllString(sel.Text(), " "))
		if line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return strings.TrimSpace(spaceRun.ReplaceAllString(doc.Text(), " "))
	}
	return strings.Join(lines, "\n")
}

func pdfToText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Package templates renders the transactional emails sent by the outbox worker.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	texttemplate "text/template"
)

//go:embed *.html *.txt
var templateFS embed.FS

// ErrUnknownTemplate is returned by Render for names with no HTML template.
var ErrUnknownTemplate = errors.New("unknown email template")

// AccountEmailData is the data every account email template receives.
type AccountEmailData struct {
	Name      string
	ActionURL string
	ExpiresIn string
}

// Message is a rendered email body. Text is empty when the template has no
// plain-text part.
type Message struct {
	HTML string
	Text string
}

type templatePair struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Renderer holds one parsed template pair per email kind, keyed by the file
// name without extension.
type Renderer struct {
	pairs map[string]templatePair
}

// NewRenderer parses the embedded templates. Every .html file defines a kind;
// a .txt file with the same base name is its optional plain-text part.
func NewRenderer() (*Renderer, error) {
	htmlFiles, err := fs.Glob(templateFS, "*.html")
	if err != nil {
		return nil, err
	}

	pairs := make(map[string]templatePair, len(htmlFiles))
	for _, file := range htmlFiles {
		name := strings.TrimSuffix(file, path.Ext(file))

		html, err := htmltemplate.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		pair := templatePair{html: html}

		textFile := name + ".txt"
		if _, err := fs.Stat(templateFS, textFile); err == nil {
			pair.text, err = texttemplate.ParseFS(templateFS, textFile)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", textFile, err)
			}
		}
		pairs[name] = pair
	}

	return &Renderer{pairs: pairs}, nil
}

// Names lists the renderable email kinds in order.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.pairs))
	for name := range r.pairs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the named template pair.
func (r *Renderer) Render(name string, data AccountEmailData) (Message, error) {
	pair, ok := r.pairs[name]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var msg Message
	var buf bytes.Buffer
	if err := pair.html.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}
	msg.HTML = buf.String()

	if pair.text != nil {
		buf.Reset()
		if err := pair.text.Execute(&buf, data); err != nil {
			return Message{}, fmt.Errorf("render %s text: %w", name, err)
		}
		msg.Text = buf.String()
	}
	return msg, nil
}

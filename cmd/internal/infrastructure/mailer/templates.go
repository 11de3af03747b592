package mailer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"notekeeper/cmd/internal/domain/entity"
)

var ErrUnknownPurpose = errors.New("unknown email purpose")

//go:embed templates/*
var templateFS embed.FS

type emailKind struct {
	subject  string
	action   string
	htmlFile string
	path     string
}

var kinds = map[entity.TokenPurpose]emailKind{
	entity.TokenVerify: {
		subject:  "Verify Your Email Address",
		action:   "Verify your email",
		htmlFile: "templates/verify.html",
		path:     "verifyemail",
	},
	entity.TokenReset: {
		subject:  "Reset Your Password",
		action:   "Reset your password",
		htmlFile: "templates/reset.html",
		path:     "reset-password",
	},
}

type templateData struct {
	AppName   string
	Action    string
	Link      string
	ExpiresIn string
}

// Rendered is an email ready to hand to a Transport.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
	Link    string
}

// Renderer turns a purpose and raw token into the account emails.
type Renderer struct {
	domain  string
	appName string
	html    map[entity.TokenPurpose]*htmltemplate.Template
	text    *texttemplate.Template
}

func NewRenderer(domain, appName string) (*Renderer, error) {
	r := &Renderer{
		domain:  strings.TrimRight(domain, "/"),
		appName: appName,
		html:    make(map[entity.TokenPurpose]*htmltemplate.Template, len(kinds)),
	}

	for purpose, kind := range kinds {
		tmpl, err := htmltemplate.ParseFS(templateFS, kind.htmlFile)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", kind.htmlFile, err)
		}
		r.html[purpose] = tmpl
	}

	text, err := texttemplate.ParseFS(templateFS, "templates/plain.txt")
	if err != nil {
		return nil, fmt.Errorf("parse plain.txt: %w", err)
	}
	r.text = text
	return r, nil
}

func (r *Renderer) Render(purpose entity.TokenPurpose, token string) (*Rendered, error) {
	kind, ok := kinds[purpose]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, purpose)
	}

	data := templateData{
		AppName:   r.appName,
		Action:    kind.action,
		Link:      r.link(kind.path, token),
		ExpiresIn: humanDuration(entity.TokenTTL),
	}

	var html bytes.Buffer
	if err := r.html[purpose].Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", purpose, err)
	}

	var text bytes.Buffer
	if err := r.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", purpose, err)
	}

	return &Rendered{
		Subject: kind.subject,
		HTML:    html.String(),
		Text:    text.String(),
		Link:    data.Link,
	}, nil
}

func (r *Renderer) link(path, token string) string {
	return r.domain + "/" + path + "?token=" + url.QueryEscape(token)
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	return d.String()
}

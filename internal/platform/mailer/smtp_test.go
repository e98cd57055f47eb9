package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/diagnosis/salvatore-shoes/pkg/config"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@salvatoreshoes.local", Email{
		To:      "taller@salvatoreshoes.local",
		ReplyTo: "cliente@example.com",
		Subject: "Nueva solicitud de presupuesto",
		Text:    "Nombre: Ana",
		HTML:    "<p>Nombre: Ana</p>",
	}))

	for _, want := range []string{
		"From: <noreply@salvatoreshoes.local>\r\n",
		"To: <taller@salvatoreshoes.local>\r\n",
		"Reply-To: <cliente@example.com>\r\n",
		"Subject: Nueva solicitud de presupuesto\r\n",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Type: text/html; charset=utf-8",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "--\r\n") {
		t.Fatalf("message not closed by the final boundary:\n%s", msg)
	}
}

func TestBuildMessage_ReplyToCannotInjectHeaders(t *testing.T) {
	msg := string(buildMessage("noreply@salvatoreshoes.local", Email{
		To:      "taller@salvatoreshoes.local",
		ReplyTo: "visitor@example.com\r\nX-Injected: yes",
		Subject: "Hola\r\nBcc: x@y.es",
		Text:    "hola",
	}))

	header := msg[:strings.Index(msg, "\r\n\r\n")]
	for _, line := range strings.Split(header, "\r\n") {
		name := strings.ToLower(strings.SplitN(line, ":", 2)[0])
		if name == "x-injected" || name == "bcc" {
			t.Fatalf("injected header line %q:\n%s", line, header)
		}
	}
}

func TestBuildMessage_BoundaryPerMessage(t *testing.T) {
	boundary := func(msg string) string {
		i := strings.Index(msg, "boundary=\"")
		rest := msg[i+len("boundary=\""):]
		return rest[:strings.Index(rest, "\"")]
	}
	e := Email{To: "a@b.es", Subject: "s", Text: "--salvatore-"}
	a := boundary(string(buildMessage("x@y.es", e)))
	b := boundary(string(buildMessage("x@y.es", e)))
	if a == b || !strings.HasPrefix(a, "salvatore-") {
		t.Fatalf("boundaries %q and %q", a, b)
	}
}

func TestBuildMessage_EncodesSubject(t *testing.T) {
	msg := string(buildMessage("a@b.es", Email{To: "c@d.es", Subject: "Reparación"}))
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Fatalf("expected encoded subject:\n%s", msg)
	}
	if strings.Contains(msg, "text/html") {
		t.Fatal("html part should be omitted when empty")
	}
}

func TestSMTPMailer_RejectsEmptyRecipient(t *testing.T) {
	m := NewSMTPMailer("localhost", 1025, "a@b.es", "", "", false)
	if _, err := m.Send(context.Background(), Email{To: "  "}); err == nil {
		t.Fatal("expected error")
	}
}

func TestDevMailer(t *testing.T) {
	id, err := NewDevMailer().Send(context.Background(), Email{To: "x@y.es", Subject: "hola"})
	if err != nil || !strings.HasPrefix(id, "dev-") {
		t.Fatalf("unexpected result %q, %v", id, err)
	}
}

func TestMailer_DisabledWithoutKey(t *testing.T) {
	m := NewMailer("", "Salvatore", "noreply@salvatoreshoes.local")
	if m.Enabled {
		t.Fatal("expected disabled mailer")
	}
	if _, err := m.Send(context.Background(), Email{To: "x@y.es"}); err == nil {
		t.Fatal("expected error from disabled mailer")
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(config.EmailConfig{DevMode: true, MailerSendKey: "k"}).(*DevMailer); !ok {
		t.Fatal("dev mode should win")
	}
	if _, ok := FromConfig(config.EmailConfig{MailerSendKey: "k"}).(*Mailer); !ok {
		t.Fatal("expected MailerSend")
	}
	if _, ok := FromConfig(config.EmailConfig{SMTPHost: "localhost", SMTPPort: 1025}).(*SMTPMailer); !ok {
		t.Fatal("expected SMTP")
	}
}

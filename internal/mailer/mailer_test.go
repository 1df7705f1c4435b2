package mailer

import (
	"encoding/base64"
	"net/smtp"
	"strings"
	"testing"
)

func TestSendBuildsMultipartMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	orig := SMTPSendFunc
	SMTPSendFunc = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}
	defer func() { SMTPSendFunc = orig }()

	m := New("mail.example", 587, "user", "pass", "facturation@delmas.example")
	attachment := []byte("%PDF-1.7 fake invoice body")
	msgID, err := m.Send(Message{
		To:             "client@example.com",
		Subject:        "Facture FAC-2026-0001",
		Body:           "Bonjour, votre facture est jointe.",
		AttachmentName: "FAC-2026-0001.pdf",
		Attachment:     attachment,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msgID == "" || !strings.HasSuffix(msgID, "@mail.example>") {
		t.Errorf("message id = %q", msgID)
	}
	if gotAddr != "mail.example:587" {
		t.Errorf("addr = %s", gotAddr)
	}
	if gotFrom != "facturation@delmas.example" || len(gotTo) != 1 || gotTo[0] != "client@example.com" {
		t.Errorf("envelope = %s -> %v", gotFrom, gotTo)
	}

	raw := string(gotMsg)
	for _, want := range []string{
		"Subject: Facture FAC-2026-0001",
		"Message-ID: " + msgID,
		"Content-Type: multipart/mixed",
		`attachment; filename="FAC-2026-0001.pdf"`,
		"Content-Transfer-Encoding: base64",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
	// The attachment survives base64 round-trip.
	encoded := base64.StdEncoding.EncodeToString(attachment)
	if !strings.Contains(strings.ReplaceAll(raw, "\r\n", ""), encoded) {
		t.Error("attachment bytes not found in message")
	}
}

func TestSendWithoutAttachment(t *testing.T) {
	orig := SMTPSendFunc
	var gotMsg []byte
	SMTPSendFunc = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	}
	defer func() { SMTPSendFunc = orig }()

	m := New("mail.example", 25, "", "", "noreply@delmas.example")
	if _, err := m.Send(Message{To: "x@example.com", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if strings.Contains(string(gotMsg), "Content-Disposition: attachment") {
		t.Error("unexpected attachment part")
	}
}

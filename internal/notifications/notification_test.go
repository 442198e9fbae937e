package notifications

import (
	"strings"
	"testing"
	"time"
)

func TestSlotAvailable_Render(t *testing.T) {
	n := SlotAvailable{
		LegalServiceTitle: "Consulenza legale",
		EventDate:         "2026-09-02T10:00:00Z",
		HoldDuration:      3 * time.Minute,
	}

	content := n.Render()

	if content.Subject != "Appuntamento disponibile" {
		t.Errorf("unexpected subject: %q", content.Subject)
	}
	if !strings.Contains(content.HTML, "Consulenza legale") {
		t.Errorf("HTML body should contain the service title, got %q", content.HTML)
	}
	if !strings.Contains(content.HTML, "2026-09-02T10:00:00Z") {
		t.Errorf("HTML body should contain the event date, got %q", content.HTML)
	}
	if !strings.Contains(content.HTML, "3 minuti") {
		t.Errorf("HTML body should state the hold window in minutes, got %q", content.HTML)
	}
	if content.Text == "" {
		t.Error("plain-text alternative must not be empty")
	}
}

func TestRemovedFromList_Render(t *testing.T) {
	n := RemovedFromList{LegalServiceTitle: "Diritto di famiglia"}

	content := n.Render()

	if content.Subject != "Rimozione dalla lista d'attesa" {
		t.Errorf("unexpected subject: %q", content.Subject)
	}
	if !strings.Contains(content.HTML, "Diritto di famiglia") {
		t.Errorf("HTML body should contain the service title, got %q", content.HTML)
	}
}

func TestBuildMessage_MultipartAlternative(t *testing.T) {
	msg := buildMessage("no-reply@lexsched.local", "client@example.com", Content{
		Subject: "Appuntamento disponibile",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})

	for _, want := range []string{
		"From: no-reply@lexsched.local\r\n",
		"To: client@example.com\r\n",
		"Subject: Appuntamento disponibile\r\n",
		"Content-Type: multipart/alternative",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Type: text/html; charset=utf-8",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "--\r\n") {
		t.Errorf("message must end with the closing boundary, got %q", msg[len(msg)-20:])
	}
}

func TestNotificationKinds(t *testing.T) {
	if (SlotAvailable{}).Kind() != "slot_available" {
		t.Error("unexpected kind for SlotAvailable")
	}
	if (RemovedFromList{}).Kind() != "removed_from_list" {
		t.Error("unexpected kind for RemovedFromList")
	}
}

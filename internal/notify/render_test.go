package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/models"
)

func TestRenderCritical(t *testing.T) {
	msg := RenderCritical(CriticalData{
		BranchCode: "norte",
		BranchName: "Sucursal Norte",
		ErrorKind:  models.ErrorKindDatabase,
		Since:      time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Duration:   47 * time.Minute,
	})

	for _, want := range []string{"Sucursal Norte", "norte", "DATABASE", "2026-09-01 08:00", "47m"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Critical message missing %q:\n%s", want, msg)
		}
	}
}

func TestRenderRecovery(t *testing.T) {
	msg := RenderRecovery(RecoveryData{
		BranchCode: "sur",
		Duration:   95 * time.Minute,
	})
	if !strings.Contains(msg, "sur") {
		t.Errorf("Recovery message missing branch code:\n%s", msg)
	}
	if !strings.Contains(msg, "1h 35m") {
		t.Errorf("Recovery message missing formatted duration:\n%s", msg)
	}
}

func TestRenderDigest(t *testing.T) {
	item := func(barcode, desc string, days int) inventory.ItemView {
		return inventory.ItemView{
			ExtendedInventoryItem: models.ExtendedInventoryItem{Barcode: barcode, Description: desc},
			DaysRemaining:         days,
			Urgency:               inventory.Classify(days),
		}
	}

	msg := RenderDigest(DigestData{
		GeneratedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AlertDays:   7,
		Items: []inventory.ItemView{
			item("111", "Yogurt", -2),
			item("222", "Leche", 1),
			item("333", "Queso", 6),
		},
	})

	if !strings.Contains(msg, "within 7 days: 3") {
		t.Errorf("Digest missing item count:\n%s", msg)
	}
	if !strings.Contains(msg, "expired 2 days ago") {
		t.Errorf("Expired items must be called out separately:\n%s", msg)
	}
	if !strings.Contains(msg, "Leche (1 days left)") {
		t.Errorf("Digest missing critical line:\n%s", msg)
	}

	// Empty digest has a friendly body, not an error
	empty := RenderDigest(DigestData{GeneratedAt: time.Now(), AlertDays: 7})
	if !strings.Contains(empty, "Nothing close to expiration") {
		t.Errorf("Empty digest should say so:\n%s", empty)
	}
}

func TestNullSender(t *testing.T) {
	s := NewNullSender("whatsapp")
	result := s.Send(context.Background(), "hello", nil)
	if result.Success {
		t.Error("NullSender must never report success")
	}
	if result.ErrorKind != ErrKindNotConfigured {
		t.Errorf("ErrorKind = %s, want %s", result.ErrorKind, ErrKindNotConfigured)
	}
}

func TestWhatsAppAddr(t *testing.T) {
	if got := whatsappAddr("+5215512345678"); got != "whatsapp:+5215512345678" {
		t.Errorf("whatsappAddr = %s", got)
	}
	if got := whatsappAddr("whatsapp:+521"); got != "whatsapp:+521" {
		t.Errorf("Already-prefixed number must not be double prefixed: %s", got)
	}
}

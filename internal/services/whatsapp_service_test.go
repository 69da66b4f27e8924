package services

import (
	"context"
	"strings"
	"testing"
)

func TestHandleIncomingTracking(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	order := mustCreate(t, env, newOrder())

	svc := NewWhatsAppService(env.chat, env.orders, "RB-", "RepairBox")
	text := "hi, what about " + strings.ToLower(order.TrackingID) + "?"
	reply, err := svc.HandleIncoming(ctx, "628123456789", text)
	if err != nil {
		t.Fatalf("HandleIncoming: %v", err)
	}

	for _, want := range []string{
		"Repair RO-00001 (" + order.TrackingID + ")",
		"Device: iPhone 13",
		"Status: Pending Review",
		"Payment: Unpaid (total 400.00)",
		"Expected completion: 02 Mar 2026 11:00",
	} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
	if len(env.chat.sent) != 1 || env.chat.sent[0].phone != "628123456789" {
		t.Errorf("reply not sent back: %+v", env.chat.sent)
	}
}

func TestHandleIncomingUnknownAndHelp(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	svc := NewWhatsAppService(env.chat, env.orders, "RB-", "RepairBox")

	reply, err := svc.HandleIncoming(ctx, "62811", "status RB-00000 please")
	if err != nil {
		t.Fatalf("HandleIncoming: %v", err)
	}
	if reply != "No repair found for tracking ID RB-00000. Please check the ID on your receipt." {
		t.Errorf("unexpected reply %q", reply)
	}

	reply, err = svc.HandleIncoming(ctx, "62811", "hello")
	if err != nil {
		t.Fatalf("HandleIncoming: %v", err)
	}
	if !strings.HasPrefix(reply, "Welcome to RepairBox!") || !strings.Contains(reply, "RB-7K2QX") {
		t.Errorf("unexpected help reply %q", reply)
	}
}

func TestSendMessageWithoutClient(t *testing.T) {
	svc := NewWhatsAppService(nil, nil, "RB-", "RepairBox")
	if err := svc.SendMessage(context.Background(), "62811", "hi"); err == nil {
		t.Fatal("expected an error without a client")
	}
}

package notify

import (
	"context"
	"testing"
)

func TestCollectGathersPerRequest(t *testing.T) {
	hub := NewHub(nil)

	ctx, c := Collect(context.Background())
	hub.Success(ctx, "Job created successfully")
	hub.Error(ctx, "Validation error")
	hub.Error(context.Background(), "not collected")

	got := c.Notifications()
	if len(got) != 2 {
		t.Fatalf("collected %d notifications, want 2", len(got))
	}
	if got[0].Level != LevelSuccess || got[0].Message != "Job created successfully" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Level != LevelError || got[1].Message != "Validation error" {
		t.Fatalf("second = %+v", got[1])
	}
	if got[0].ID == got[1].ID {
		t.Fatal("notification ids collide")
	}

	msgs := c.Messages()
	if len(msgs) != 2 || msgs[1] != "Validation error" {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestHubFansOutToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Error(context.Background(), "Server error. Please try again later.")

	for _, ch := range []chan Notification{a, b} {
		n := <-ch
		if n.Message != "Server error. Please try again later." || n.Level != LevelError {
			t.Fatalf("received %+v", n)
		}
	}

	hub.Unsubscribe(a)
	if _, open := <-a; open {
		t.Fatal("unsubscribed channel still open")
	}
	hub.Unsubscribe(a)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	ch := hub.Subscribe()

	for i := 0; i < cap(ch)+5; i++ {
		hub.Success(context.Background(), "ok")
	}
	if len(ch) != cap(ch) {
		t.Fatalf("buffered %d, want %d", len(ch), cap(ch))
	}
}

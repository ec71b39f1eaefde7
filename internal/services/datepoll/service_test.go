package datepoll

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tzbot/internal/gateway"
	"tzbot/pkg/logx"
)

type fakeSender struct {
	mu        sync.Mutex
	sent      []string
	reactions map[string][]string // message id -> emojis in order
	nextID    int
}

func newFakeSender() *fakeSender {
	return &fakeSender{reactions: map[string][]string{}}
}

func (f *fakeSender) Send(_ context.Context, channelID, text string) (gateway.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, text)
	return gateway.MessageRef{ChannelID: channelID, MessageID: fmt.Sprint(f.nextID)}, nil
}

func (f *fakeSender) React(_ context.Context, ref gateway.MessageRef, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[ref.MessageID] = append(f.reactions[ref.MessageID], emoji)
	return nil
}

func oneTarget() Resolver {
	return func() ([]gateway.ChannelTarget, error) {
		return []gateway.ChannelTarget{{GuildName: "g", ChannelName: "dates", ChannelID: "c1"}}, nil
	}
}

func TestRunOncePostsPollWeek(t *testing.T) {
	t.Parallel()
	snd := newFakeSender()
	svc := New(snd, oneTarget(), logx.Nop())
	// Saturday 2023-05-27 20:30, the usual trigger instant.
	svc.now = func() time.Time {
		return time.Date(2023, time.May, 27, 20, 30, 0, 0, time.UTC)
	}

	svc.RunOnce(context.Background())

	// Next Monday is 2023-05-29; offsets 1..6 are Tue 30.05. .. Sun 04.06.
	want := []string{
		"Di, 30.05. 20:00 Uhr",
		"Mi, 31.05. 20:00 Uhr",
		"Do, 01.06. 20:00 Uhr",
		"Fr, 02.06. 20:00 Uhr",
		"Sa, 03.06. 20:00 Uhr",
		"So, 04.06. 20:00 Uhr",
	}
	if len(snd.sent) != len(want) {
		t.Fatalf("got %d messages, want %d", len(snd.sent), len(want))
	}
	for i, w := range want {
		if snd.sent[i] != w {
			t.Fatalf("message %d = %q, want %q", i, snd.sent[i], w)
		}
	}

	for id, emojis := range snd.reactions {
		if len(emojis) != 3 {
			t.Fatalf("message %s has %d reactions, want 3", id, len(emojis))
		}
		for i, e := range voteOptions {
			if emojis[i] != e {
				t.Fatalf("message %s reaction %d = %q, want %q", id, i, emojis[i], e)
			}
		}
	}
	if len(snd.reactions) != len(want) {
		t.Fatalf("%d messages got reactions, want %d", len(snd.reactions), len(want))
	}
}

func TestRunOnceOnMonday(t *testing.T) {
	t.Parallel()
	snd := newFakeSender()
	svc := New(snd, oneTarget(), logx.Nop())
	// A Monday 10:00 must target the *following* week.
	svc.now = func() time.Time {
		return time.Date(2023, time.May, 22, 10, 0, 0, 0, time.UTC)
	}

	svc.RunOnce(context.Background())

	if len(snd.sent) == 0 {
		t.Fatal("no messages sent")
	}
	if snd.sent[0] != "Di, 30.05. 20:00 Uhr" {
		t.Fatalf("first message = %q, want the Tuesday after next Monday", snd.sent[0])
	}
}

func TestRunOnceNoChannels(t *testing.T) {
	t.Parallel()
	snd := newFakeSender()
	svc := New(snd, func() ([]gateway.ChannelTarget, error) { return nil, nil }, logx.Nop())

	svc.RunOnce(context.Background())

	if len(snd.sent) != 0 {
		t.Fatalf("got %d messages despite zero channels", len(snd.sent))
	}
}

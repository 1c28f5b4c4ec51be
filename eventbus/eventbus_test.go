// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventbus

import (
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := New()
	var got1, got2 int
	b.Subscribe("peer-discovery", func(env *envelope.Envelope) { got1++ })
	b.Subscribe("peer-discovery", func(env *envelope.Envelope) { got2++ })

	b.Publish("peer-discovery", &envelope.Envelope{MessageType: "VerifyNodeIdentity"})

	if got1 != 1 || got2 != 1 {
		t.Fatalf("expected both subscribers to be called once, got %d,%d", got1, got2)
	}
	if b.SubscriberCount("peer-discovery") != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.SubscriberCount("peer-discovery"))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	sub := b.Subscribe("topic", func(env *envelope.Envelope) { calls++ })
	b.Unsubscribe(sub)
	b.Publish("topic", &envelope.Envelope{})
	if calls != 0 {
		t.Fatalf("expected no delivery after unsubscribe, got %d calls", calls)
	}
}

func TestPublishToUnknownTopicIsNoop(t *testing.T) {
	b := New()
	b.Publish("nothing-subscribed", &envelope.Envelope{RecipientId: types.SubsystemPeerDiscovery})
}

package pipeline

import (
	"strings"
	"testing"

	"quoteflow/internal"
	"quoteflow/internal/util"
)

func TestAckCompleteInquiry(t *testing.T) {
	gen := NewAckGenerator(testConfig())
	event := testEvent(internal.Product{Name: "Widget Pro", Quantity: util.FloatPtr(10)})
	event.Sender = internal.Sender{
		Name:       util.StringPtr("John Smith"),
		Email:      util.StringPtr("john@example.com"),
		Confidence: 1.0,
	}

	ack := gen.Generate(event)

	if ack.To != "john@example.com" {
		t.Fatalf("to=%q", ack.To)
	}
	if ack.Subject != "Re: Widget Pro Quote Request" {
		t.Fatalf("subject=%q", ack.Subject)
	}
	if ack.Greeting != "Dear John Smith," {
		t.Fatalf("greeting=%q", ack.Greeting)
	}
	if !strings.Contains(ack.Body, "We have all the necessary information") {
		t.Fatalf("body=%q", ack.Body)
	}
	if !strings.Contains(ack.Body, "10 Widget Pro") {
		t.Fatalf("body=%q", ack.Body)
	}
	if len(ack.Questions) != 1 || !strings.Contains(ack.Questions[0], "delivery requirements") {
		t.Fatalf("questions=%v", ack.Questions)
	}
	if ack.SLAHours != 24 {
		t.Fatalf("sla=%d", ack.SLAHours)
	}
}

func TestAckMissingQuantityAsksForIt(t *testing.T) {
	gen := NewAckGenerator(testConfig())
	event := testEvent(internal.Product{Name: "Gadget Basic"})
	event.Gaps = []string{"Missing quantity for Gadget Basic"}

	ack := gen.Generate(event)

	if len(ack.Questions) != 1 || ack.Questions[0] != "What quantity of Gadget Basic do you need?" {
		t.Fatalf("questions=%v", ack.Questions)
	}
	if !strings.Contains(ack.Body, "additional information") {
		t.Fatalf("body=%q", ack.Body)
	}
}

func TestAckQuestionCap(t *testing.T) {
	gen := NewAckGenerator(testConfig())
	event := testEvent(
		internal.Product{Name: "A"},
		internal.Product{Name: "B"},
		internal.Product{Name: "C"},
	)
	event.Gaps = []string{
		"Missing quantity for A",
		"Missing quantity for B",
		"Missing quantity for C",
	}

	ack := gen.Generate(event)

	if len(ack.Questions) != maxFollowUpQuestions {
		t.Fatalf("questions=%v", ack.Questions)
	}
}

func TestAckUrgentSubjectAndSLA(t *testing.T) {
	gen := NewAckGenerator(testConfig())
	urgency := internal.UrgencyHigh
	event := testEvent(internal.Product{Name: "Tool Kit", Quantity: util.FloatPtr(2)})
	event.Urgency = &urgency

	ack := gen.Generate(event)

	if !strings.HasSuffix(ack.Subject, "- URGENT") {
		t.Fatalf("subject=%q", ack.Subject)
	}
	if !strings.Contains(ack.Body, "within 12 hours") {
		t.Fatalf("body=%q", ack.Body)
	}
	if ack.UrgencyLevel == nil || *ack.UrgencyLevel != internal.UrgencyHigh {
		t.Fatalf("urgency=%v", ack.UrgencyLevel)
	}
}

func TestAckNoProducts(t *testing.T) {
	gen := NewAckGenerator(testConfig())

	ack := gen.Generate(testEvent())

	if ack.Subject != "Re: Your Inquiry - Additional Information Needed" {
		t.Fatalf("subject=%q", ack.Subject)
	}
	if ack.Greeting != "Dear Valued Customer," {
		t.Fatalf("greeting=%q", ack.Greeting)
	}
	if len(ack.Questions) == 0 || ack.Questions[0] != "What products are you interested in purchasing?" {
		t.Fatalf("questions=%v", ack.Questions)
	}
}

func TestAckTwoProductSubject(t *testing.T) {
	gen := NewAckGenerator(testConfig())
	event := testEvent(
		internal.Product{Name: "Widget Pro", Quantity: util.FloatPtr(5)},
		internal.Product{Name: "Tool Kit", Quantity: util.FloatPtr(2)},
	)

	ack := gen.Generate(event)

	if ack.Subject != "Re: Widget Pro and Tool Kit Quote Request" {
		t.Fatalf("subject=%q", ack.Subject)
	}
}

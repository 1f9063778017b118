package pipeline

import (
	"fmt"
	"strings"

	"quoteflow/internal"
	"quoteflow/internal/config"
)

const maxFollowUpQuestions = 2

// AckGenerator renders the acknowledgment reply for a ParsedEvent. It is
// purely presentational: every decision it needs is already in the event.
type AckGenerator struct {
	companyName  string
	contactEmail string
	slaHours     int
}

func NewAckGenerator(cfg config.Config) *AckGenerator {
	return &AckGenerator{
		companyName:  cfg.CompanyName,
		contactEmail: cfg.ContactEmail,
		slaHours:     cfg.SLAHours,
	}
}

func (g *AckGenerator) Generate(event internal.ParsedEvent) internal.Acknowledgment {
	to := ""
	if event.Sender.Email != nil {
		to = *event.Sender.Email
	}

	return internal.Acknowledgment{
		EmailID:      event.EmailID,
		Timestamp:    event.Timestamp,
		To:           to,
		Subject:      g.subject(event.Products, event.Urgency),
		Greeting:     g.greeting(event.Sender),
		Body:         g.body(event),
		Questions:    g.questions(event.Gaps, event.Products),
		Closing:      fmt.Sprintf("Best regards,\n\n%s Sales Team\n%s", g.companyName, g.contactEmail),
		SLAHours:     g.slaHours,
		UrgencyLevel: event.Urgency,
	}
}

func (g *AckGenerator) subject(products []internal.Product, urgency *internal.Urgency) string {
	var subject string
	switch len(products) {
	case 0:
		return "Re: Your Inquiry - Additional Information Needed"
	case 1:
		subject = fmt.Sprintf("Re: %s Quote Request", products[0].Name)
	case 2:
		subject = fmt.Sprintf("Re: %s and %s Quote Request", products[0].Name, products[1].Name)
	default:
		subject = fmt.Sprintf("Re: Quote Request for %d Items", len(products))
	}

	if urgency != nil {
		switch *urgency {
		case internal.UrgencyHigh:
			subject += " - URGENT"
		case internal.UrgencyMedium:
			subject += " - Priority"
		}
	}
	return subject
}

func (g *AckGenerator) greeting(sender internal.Sender) string {
	if sender.Name != nil && *sender.Name != "" {
		return fmt.Sprintf("Dear %s,", *sender.Name)
	}
	return "Dear Valued Customer,"
}

func (g *AckGenerator) body(event internal.ParsedEvent) string {
	parts := []string{g.thanks(event.Urgency)}

	if len(event.Products) > 0 {
		parts = append(parts, g.referenceProducts(event.Products))
	}

	if len(event.Gaps) == 1 {
		parts = append(parts, "To provide you with an accurate quote, we need some additional information: "+strings.ToLower(event.Gaps[0]))
	} else if len(event.Gaps) > 1 {
		parts = append(parts, "To provide you with an accurate quote, we need some additional information about your requirements.")
	} else {
		parts = append(parts, "We have all the necessary information to prepare your quote.")
	}

	parts = append(parts, g.nextSteps(event.Urgency))
	return strings.Join(parts, "\n\n")
}

func (g *AckGenerator) thanks(urgency *internal.Urgency) string {
	if urgency != nil {
		switch *urgency {
		case internal.UrgencyHigh:
			return "Thank you for your urgent inquiry. We understand the time-sensitive nature of your request and will prioritize your quote accordingly."
		case internal.UrgencyMedium:
			return "Thank you for your inquiry. We appreciate your interest in our products and will process your request promptly."
		}
	}
	return fmt.Sprintf("Thank you for your inquiry. We appreciate your interest in %s products.", g.companyName)
}

func (g *AckGenerator) referenceProducts(products []internal.Product) string {
	if len(products) == 1 {
		product := products[0]
		if product.Quantity != nil {
			return fmt.Sprintf("We have received your request for %g %s.", *product.Quantity, product.Name)
		}
		return fmt.Sprintf("We have received your inquiry about %s.", product.Name)
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("We have received your inquiry about the following products: %s.", strings.Join(names, ", "))
}

func (g *AckGenerator) nextSteps(urgency *internal.Urgency) string {
	hours := g.slaHours
	if urgency != nil && *urgency == internal.UrgencyHigh {
		hours = g.slaHours / 2
	}
	return fmt.Sprintf("We will provide your quote within %d hours. If you have any questions, please don't hesitate to contact us at %s.", hours, g.contactEmail)
}

func (g *AckGenerator) questions(gaps []string, products []internal.Product) []string {
	questions := make([]string, 0, maxFollowUpQuestions)

	if len(gaps) > 0 {
		for _, product := range products {
			if len(questions) >= maxFollowUpQuestions {
				break
			}
			if product.Quantity == nil {
				questions = append(questions, fmt.Sprintf("What quantity of %s do you need?", product.Name))
			}
		}
	}

	if len(questions) == 0 {
		if len(products) == 0 {
			questions = append(questions, "What products are you interested in purchasing?")
		}
		if len(questions) < maxFollowUpQuestions {
			questions = append(questions, "Do you have any specific delivery requirements or timeline preferences?")
		}
	}

	if len(questions) > maxFollowUpQuestions {
		questions = questions[:maxFollowUpQuestions]
	}
	return questions
}

package phishing

import (
	"regexp"

	"github.com/nao1215/riskscan/internal/model"
)

// rule is the pattern set of one category.
type rule struct {
	category    model.Category
	severity    model.Severity
	description string
	patterns    []*regexp.Regexp
}

// defaultRules returns the rule table in category declaration order.
func defaultRules() []rule {
	return []rule{
		{
			category:    model.CategoryUrgency,
			severity:    model.SeverityMedium,
			description: "Urgent or time-pressure language pushes the reader to act without checking",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?|immediately|right away|asap|act (?:now|fast|quickly)|don'?t delay|time[- ]sensitive)\b`),
				regexp.MustCompile(`(?i)\b(?:final (?:notice|warning|reminder)|last (?:chance|warning)|expires? (?:today|tonight|soon)|before it'?s too late)\b`),
				regexp.MustCompile(`(?i)\bwithin (?:the next )?\d+\s*(?:hours?|hrs?|minutes?|mins?|days?)\b`),
				regexp.MustCompile(`(?i)\b(?:24|48|72)[\s-]*hours?\b`),
				regexp.MustCompile(`(?i)\baccount (?:will be|has been|is) (?:suspended|locked|disabled|restricted|frozen|deactivated)\b`),
			},
		},
		{
			category:    model.CategoryCredentialRequest,
			severity:    model.SeverityHigh,
			description: "Requests a password, login, one-time code or other credential",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:verify|confirm|update|validate|re-?enter|provide|enter|submit|reset|share|send)\s+(?:your\s+)?(?:password|passcode|login(?: details)?|credentials?|username|pin|security (?:code|questions?)|one[- ]time (?:code|password)|otp|2fa code|verification code|account details|bank details|card details)\b`),
				regexp.MustCompile(`(?i)\b(?:verify|confirm|validate) your (?:account|identity)\b`),
				regexp.MustCompile(`(?i)\b(?:log ?in|sign ?in) (?:to|and) (?:verify|confirm|restore|unlock|reactivate)\b`),
				regexp.MustCompile(`(?i)\b(?:social security number|mother'?s maiden name)\b`),
			},
		},
		{
			category:    model.CategoryPaymentPressure,
			severity:    model.SeverityHigh,
			description: "Demands payment, fees, gift cards or crypto transfers",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bpay(?:ment)? (?:now|immediately|today|required|overdue|due|the (?:fee|balance|fine))\b`),
				regexp.MustCompile(`(?i)\b(?:outstanding|overdue|unpaid) (?:balance|invoice|payment|bill|fine|toll)\b`),
				regexp.MustCompile(`(?i)\b(?:wire transfer|gift ?cards?|itunes cards?|bitcoin|btc|usdt|crypto(?:currency)? (?:wallet|payment|address))\b`),
				regexp.MustCompile(`(?i)\b(?:send (?:money|funds|payment)|processing fee|release fee|customs fee|delivery fee)\b`),
				regexp.MustCompile(`(?i)\b(?:update (?:your )?(?:billing|payment) (?:information|details|method)|billing (?:problem|issue))\b`),
			},
		},
		{
			category:    model.CategoryCallToAction,
			severity:    model.SeverityMedium,
			description: "Prompts the reader to click, tap or open a link or attachment",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:click|tap|press) (?:here|this link|the link|below|now|on the link|the button)\b`),
				regexp.MustCompile(`(?i)\b(?:follow|open|use) (?:this|the) (?:link|attachment)\b`),
				regexp.MustCompile(`(?i)\b(?:visit|go to) (?:this|the following) (?:link|site|page|website)\b`),
				regexp.MustCompile(`(?i)\b(?:log ?in|sign ?in) (?:here|now|below|at)\b`),
				regexp.MustCompile(`(?i)\b(?:download|open) (?:the|this) (?:attachment|file|invoice)\b|\bscan (?:the|this) qr code\b`),
			},
		},
		{
			category:    model.CategoryDataLossThreat,
			severity:    model.SeverityHigh,
			description: "Threatens deletion, lockout or exposure of the reader's data",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:data|files?|photos|pictures|documents|emails?|messages|contacts|information|content|videos)\b[^.!?\n]{0,40}?\b(?:will|shall|may|could) be (?:permanently )?(?:deleted|erased|wiped|lost|destroyed|removed|leaked|published|exposed|encrypted)\b`),
				regexp.MustCompile(`(?i)\bpermanently (?:delete|deleted|erase|erased|lose|lost|remove|removed)\b`),
				regexp.MustCompile(`(?i)\blose (?:all )?(?:of )?(?:your )?(?:access|data|files|photos|account|contacts|emails)\b`),
				regexp.MustCompile(`(?i)\b(?:delete|erase|wipe|leak|publish|expose) (?:all )?(?:of )?(?:your )?(?:data|files|photos|contacts|pictures|videos)\b`),
			},
		},
	}
}

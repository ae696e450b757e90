package card

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alovak/cardflow-gateway/internal/cardgen"
)

// Network identifies a card brand by the tag the gateway API uses for it.
type Network string

const (
	Visa            Network = "visa"
	Master          Network = "master"
	AmericanExpress Network = "american_express"
	Discover        Network = "discover"
	JCB             Network = "jcb"
	DinersClub      Network = "diners_club"
	Dankort         Network = "dankort"
)

// Rule describes the structural shape of one network's card numbers.
type Rule struct {
	Network    Network
	Pattern    *regexp.Regexp
	Lengths    []int
	CVCLengths []int
}

// Matches reports whether number fits the rule. An empty cvc is accepted by
// every rule.
func (r Rule) Matches(number, cvc string) bool {
	if !r.Pattern.MatchString(number) || !contains(r.Lengths, len(number)) {
		return false
	}
	return cvc == "" || contains(r.CVCLengths, len(cvc))
}

var rules = []Rule{
	{Visa, regexp.MustCompile(`^4`), []int{13, 16}, []int{3}},
	{Master, regexp.MustCompile(`^5[0-5]`), []int{16}, []int{3}},
	{AmericanExpress, regexp.MustCompile(`^3[47]`), []int{15}, []int{3, 4}},
	{Discover, regexp.MustCompile(`^6([045]|22)`), []int{16}, []int{3}},
	{JCB, regexp.MustCompile(`^35`), []int{16}, []int{3}},
	{DinersClub, regexp.MustCompile(`^3[0689]`), []int{14}, []int{3}},
	{Dankort, regexp.MustCompile(`^5019`), []int{16}, []int{3}},
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// MatchPolicy decides which rule wins when a number fits more than one.
type MatchPolicy int

const (
	// LastMatch keeps the last matching rule in table order, so 5019
	// numbers resolve to dankort rather than master.
	LastMatch MatchPolicy = iota
	// FirstMatch keeps the first matching rule in table order.
	FirstMatch
	// MostSpecific keeps the rule whose prefix pattern matched the most
	// digits. Ties go to the later rule.
	MostSpecific
)

func (p MatchPolicy) String() string {
	switch p {
	case LastMatch:
		return "last"
	case FirstMatch:
		return "first"
	case MostSpecific:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseMatchPolicy accepts the names returned by MatchPolicy.String.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return LastMatch, nil
	case "first":
		return FirstMatch, nil
	case "specific", "most-specific":
		return MostSpecific, nil
	}
	return LastMatch, fmt.Errorf("unknown match policy %q", s)
}

// Classification is the outcome of running the rule table over a number.
type Classification struct {
	Network Network
	Valid   bool
}

// Classify finds the network for number and checks its Luhn digit. Numbers no
// rule accepts come back with an empty network and Valid false.
func Classify(number, cvc string, policy MatchPolicy) Classification {
	matched, best := -1, -1
	for i, r := range rules {
		if !r.Matches(number, cvc) {
			continue
		}
		switch policy {
		case FirstMatch:
			if matched < 0 {
				matched = i
			}
		case MostSpecific:
			if n := len(r.Pattern.FindString(number)); n >= best {
				matched, best = i, n
			}
		default:
			matched = i
		}
	}
	if matched < 0 {
		return Classification{}
	}
	return Classification{
		Network: rules[matched].Network,
		Valid:   cardgen.LuhnValid(number),
	}
}

func contains(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

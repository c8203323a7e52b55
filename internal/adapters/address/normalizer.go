package address

import (
	"fmt"
	"km-report-service/internal/config"
	"km-report-service/internal/domain"
	"regexp"
	"strings"
)

const postcodeMarker = "CP: "

var postcodeRe = regexp.MustCompile(`^\d{5}$`)

// Normalizer turns scheduling-app addresses into mapping-service queries
// of the form "{street}, {town}, {postcode}".
//
// The rewrite list and postcode table are policy data loaded from config.
// Normalize is idempotent: feeding its output back returns the same string.
type Normalizer struct {
	cityToken string
	postcodes map[string]string
	rewrites  []config.AddressRewrite
}

func NewNormalizer(cfg config.AddressConfig) *Normalizer {
	return &Normalizer{
		cityToken: strings.ToLower(cfg.CityToken),
		postcodes: cfg.Postcodes,
		rewrites:  cfg.Rewrites,
	}
}

func (n *Normalizer) Normalize(raw string) string {
	addr := collapse(domain.SingleLine(raw))

	if r, ok := n.rewrite(addr); ok {
		return r
	}

	addr = n.stripParentheticals(addr)

	street := strings.TrimSpace(strings.Split(addr, ",")[0])
	postcode := extractPostcode(addr)
	town := ""
	if postcode != "" {
		town = n.postcodes[postcode]
	}

	return fmt.Sprintf("%s, %s, %s", street, town, postcode)
}

func (n *Normalizer) rewrite(addr string) (string, bool) {
	for _, r := range n.rewrites {
		if r.Match == "" {
			continue
		}
		if strings.Contains(addr, r.Match) || addr == r.Replacement {
			return r.Replacement, true
		}
	}
	return "", false
}

// stripParentheticals drops "(...)" notes unless they mention the city token.
func (n *Normalizer) stripParentheticals(addr string) string {
	var b strings.Builder
	rest := addr
	for {
		open := strings.Index(rest, "(")
		if open < 0 {
			b.WriteString(rest)
			break
		}
		closing := strings.Index(rest[open:], ")")
		if closing < 0 {
			b.WriteString(rest)
			break
		}
		closing += open

		b.WriteString(rest[:open])
		note := rest[open : closing+1]
		if n.cityToken != "" && strings.Contains(strings.ToLower(note), n.cityToken) {
			b.WriteString(note)
		} else {
			b.WriteString(" ")
		}
		rest = rest[closing+1:]
	}

	return collapse(strings.ReplaceAll(b.String(), " ,", ","))
}

// extractPostcode reads the code after "CP: ", falling back to a trailing
// five-digit segment as produced by Normalize itself.
func extractPostcode(addr string) string {
	if i := strings.Index(addr, postcodeMarker); i >= 0 {
		fields := strings.FieldsFunc(addr[i+len(postcodeMarker):], func(r rune) bool {
			return r == ',' || r == ' '
		})
		if len(fields) > 0 {
			return fields[0]
		}
		return ""
	}

	segments := strings.Split(addr, ",")
	last := strings.TrimSpace(segments[len(segments)-1])
	if len(segments) > 1 && postcodeRe.MatchString(last) {
		return last
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package vuln

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ethics/patch-finder/extract"
)

const (
	nvdURL           = "https://nvd.nist.gov/vuln/detail/%s"
	mitreURL         = "https://cve.mitre.org/cgi-bin/cvename.cgi?name=%s"
	debianTrackerURL = "https://security-tracker.debian.org/tracker/%s"

	debianListURL = "https://salsa.debian.org/security-tracker-team/security-tracker/raw/master/data/%s/list"
	redhatAPIURL  = "https://access.redhat.com/labs/securitydataapi/cve.json?advisory=%s"
	ghsaAPIURL    = "https://api.github.com/advisories/%s"
)

// UnrecognizedIdentifierError reports an identifier matching no known
// advisory pattern. Recoverable: callers report it and skip the crawl.
type UnrecognizedIdentifierError struct {
	ID string
}

func (e *UnrecognizedIdentifierError) Error() string {
	return fmt.Sprintf("unrecognized vulnerability identifier: %s", e.ID)
}

// The matcher table is ordered; the first matching pattern wins.
var matchers = []struct {
	pattern *regexp.Regexp
	build   func(id string, packages map[string]string) (Vulnerability, error)
}{
	{
		pattern: regexp.MustCompile(`(?i)^CVE-\d+-\d+$`),
		build: func(id string, packages map[string]string) (Vulnerability, error) {
			return NewCVE(id, packages), nil
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^DSA-\d{3,}-\d+$`),
		build: func(id string, packages map[string]string) (Vulnerability, error) {
			return NewDSA(id, packages)
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^DLA-\d{3,}-\d+$`),
		build: func(id string, packages map[string]string) (Vulnerability, error) {
			return NewDLA(id, packages)
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^RHSA:\d+-\d+$`),
		build: func(id string, packages map[string]string) (Vulnerability, error) {
			return NewRHSA(id, packages)
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^GHSA(-[0-9a-z]{4}){3}$`),
		build: func(id string, packages map[string]string) (Vulnerability, error) {
			return NewGHSA(id, packages)
		},
	},
}

// Classify matches a raw identifier, case-insensitively, against the known
// advisory patterns and constructs the corresponding variant with its
// format-specific defaults baked in.
func Classify(id string, packages map[string]string) (Vulnerability, error) {
	for _, m := range matchers {
		if m.pattern.MatchString(id) {
			return m.build(id, packages)
		}
	}
	return nil, &UnrecognizedIdentifierError{ID: id}
}

// NewCVE builds the direct CVE variant with its three mirror entrypoints.
func NewCVE(id string, packages map[string]string) *Direct {
	id = strings.ToUpper(id)
	entrypoints := []string{
		fmt.Sprintf(nvdURL, id),
		fmt.Sprintf(mitreURL, id),
		fmt.Sprintf(debianTrackerURL, id),
	}
	return NewDirect(id, entrypoints, packages)
}

// NewDSA builds the indirect Debian Security Advisory variant over the
// security-tracker DSA list.
func NewDSA(id string, packages map[string]string) (*Indirect, error) {
	return newDebianAdvisory(strings.ToUpper(id), packages, "DSA")
}

// NewDLA builds the indirect Debian LTS Advisory variant. The tracker keeps
// DLA entries in the same list format as DSAs, one directory over.
func NewDLA(id string, packages map[string]string) (*Indirect, error) {
	return newDebianAdvisory(strings.ToUpper(id), packages, "DLA")
}

func newDebianAdvisory(id string, packages map[string]string, dir string) (*Indirect, error) {
	return NewIndirect(id, packages, fmt.Sprintf(debianListURL, dir), extract.FormatPlain, map[string]interface{}{
		// e.g. "[11 Jul 2019] DSA-4480-1 redis - security update"
		"start_block": fmt.Sprintf(`^\[.+\] %s\b`, regexp.QuoteMeta(id)),
		// the first indented package annotation closes the block
		"end_block": `^\s+\[`,
		// cross-reference braces: "{CVE-2019-10192 CVE-2019-10193}"
		"search_params": `^\s+\{(.+)\}`,
		"as_per_block":  true,
	})
}

// NewRHSA builds the indirect Red Hat Security Advisory variant over the
// Security Data API.
func NewRHSA(id string, packages map[string]string) (*Indirect, error) {
	id = strings.ToUpper(id)
	base := fmt.Sprintf(redhatAPIURL, url.QueryEscape(id))
	return NewIndirect(id, packages, base, extract.FormatJSON, map[string]interface{}{
		"key_list": []string{`^CVE$`},
	})
}

// NewGHSA builds the indirect GitHub Security Advisory variant over the
// advisory REST endpoint.
func NewGHSA(id string, packages map[string]string) (*Indirect, error) {
	id = "GHSA" + strings.ToLower(id[4:])
	base := fmt.Sprintf(ghsaAPIURL, id)
	return NewIndirect(id, packages, base, extract.FormatJSON, map[string]interface{}{
		"key_list": []string{`^cve_id$`},
	})
}

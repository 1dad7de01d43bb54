package model

// RuleType classifies a rule line by its leading keyword
type RuleType int

const (
	RuleDomain        RuleType = iota // DOMAIN,example.com
	RuleDomainSuffix                  // DOMAIN-SUFFIX,example.com
	RuleDomainKeyword                 // DOMAIN-KEYWORD,example
	RuleIPCIDR                        // IP-CIDR,10.0.0.0/8
	RuleIPASN                         // IP-ASN,13335
	RuleUserAgent                     // USER-AGENT,curl*
	RuleURLRegex                      // URL-REGEX,^https?://
	RuleProcessName                   // PROCESS-NAME,curl
)

// ruleTypes is the fixed classification and output order
var ruleTypes = []RuleType{
	RuleDomain,
	RuleDomainSuffix,
	RuleDomainKeyword,
	RuleIPCIDR,
	RuleIPASN,
	RuleUserAgent,
	RuleURLRegex,
	RuleProcessName,
}

// RuleTypes returns every rule type in classification order
func RuleTypes() []RuleType {
	out := make([]RuleType, len(ruleTypes))
	copy(out, ruleTypes)
	return out
}

// String returns the literal prefix used by rule-provider files
func (t RuleType) String() string {
	switch t {
	case RuleDomain:
		return "DOMAIN"
	case RuleDomainSuffix:
		return "DOMAIN-SUFFIX"
	case RuleDomainKeyword:
		return "DOMAIN-KEYWORD"
	case RuleIPCIDR:
		return "IP-CIDR"
	case RuleIPASN:
		return "IP-ASN"
	case RuleUserAgent:
		return "USER-AGENT"
	case RuleURLRegex:
		return "URL-REGEX"
	case RuleProcessName:
		return "PROCESS-NAME"
	default:
		return "UNKNOWN"
	}
}

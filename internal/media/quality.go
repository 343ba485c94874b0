package media

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// RetrievalPolicy names how aggressively the selector should pick among
// combined encodings.
type RetrievalPolicy int

const (
	PolicyHighest RetrievalPolicy = iota
	PolicyMedium
	PolicyLowest
)

// QualityKind discriminates the parsed request forms.
type QualityKind int

const (
	QualityNumeric QualityKind = iota
	QualityPolicy
	QualityAudioOnly
)

// ParsedQualityRequest is the closed form of the user's quality string:
// a numeric height label, a policy word, or the audio-only sentinel.
type ParsedQualityRequest struct {
	Kind   QualityKind
	Height int
	Policy RetrievalPolicy
}

var numericLabelPattern = regexp.MustCompile(`^(\d{3,4})p(?:\d{2})?$`)

// labelPolicies maps display labels to retrieval policies. High labels
// ask for the best combined stream; low ones settle early.
var labelPolicies = map[string]RetrievalPolicy{
	"2160p": PolicyHighest,
	"1440p": PolicyHighest,
	"1080p": PolicyHighest,
	"720p":  PolicyHighest,
	"480p":  PolicyHighest,
	"360p":  PolicyMedium,
	"240p":  PolicyLowest,
	"144p":  PolicyLowest,
}

// ParseQualityRequest turns the request's quality string into its
// closed form. Unknown labels resolve to the highest policy rather than
// failing: the caller asked for video and deserves the best available.
func ParseQualityRequest(raw string) (ParsedQualityRequest, error) {
	label := strings.TrimSpace(raw)
	if label == "" {
		return ParsedQualityRequest{}, errors.New("quality is required")
	}
	if strings.Contains(strings.ToLower(label), "audio") {
		return ParsedQualityRequest{Kind: QualityAudioOnly}, nil
	}
	switch strings.ToLower(label) {
	case "highest", "best":
		return ParsedQualityRequest{Kind: QualityPolicy, Policy: PolicyHighest}, nil
	case "medium":
		return ParsedQualityRequest{Kind: QualityPolicy, Policy: PolicyMedium}, nil
	case "lowest", "worst":
		return ParsedQualityRequest{Kind: QualityPolicy, Policy: PolicyLowest}, nil
	}

	normalized := baseLabel(label)
	policy, known := labelPolicies[normalized]
	if !known {
		policy = PolicyHighest
	}
	request := ParsedQualityRequest{Kind: QualityNumeric, Policy: policy}
	if match := numericLabelPattern.FindStringSubmatch(normalized); match != nil {
		request.Height, _ = strconv.Atoi(match[1])
	}
	return request, nil
}

// baseLabel strips a frame-rate suffix: "1080p60" and "1080p" share a
// retrieval policy.
func baseLabel(label string) string {
	match := numericLabelPattern.FindStringSubmatch(label)
	if match == nil {
		return label
	}
	return match[1] + "p"
}

package media

import "testing"

func TestParseQualityRequest(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  ParsedQualityRequest
	}{
		{name: "audio only", input: "Audio Only", want: ParsedQualityRequest{Kind: QualityAudioOnly}},
		{name: "audio lowercase substring", input: "best audio", want: ParsedQualityRequest{Kind: QualityAudioOnly}},
		{name: "2160p", input: "2160p", want: ParsedQualityRequest{Kind: QualityNumeric, Height: 2160, Policy: PolicyHighest}},
		{name: "1080p", input: "1080p", want: ParsedQualityRequest{Kind: QualityNumeric, Height: 1080, Policy: PolicyHighest}},
		{name: "1080p60 shares policy", input: "1080p60", want: ParsedQualityRequest{Kind: QualityNumeric, Height: 1080, Policy: PolicyHighest}},
		{name: "480p", input: "480p", want: ParsedQualityRequest{Kind: QualityNumeric, Height: 480, Policy: PolicyHighest}},
		{name: "360p is medium", input: "360p", want: ParsedQualityRequest{Kind: QualityNumeric, Height: 360, Policy: PolicyMedium}},
		{name: "144p is lowest", input: "144p", want: ParsedQualityRequest{Kind: QualityNumeric, Height: 144, Policy: PolicyLowest}},
		{name: "policy word highest", input: "highest", want: ParsedQualityRequest{Kind: QualityPolicy, Policy: PolicyHighest}},
		{name: "policy word lowest", input: "lowest", want: ParsedQualityRequest{Kind: QualityPolicy, Policy: PolicyLowest}},
		{name: "unknown label defaults highest", input: "ultra", want: ParsedQualityRequest{Kind: QualityNumeric, Policy: PolicyHighest}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQualityRequest(tc.input)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseQualityRequestEmpty(t *testing.T) {
	if _, err := ParseQualityRequest("  "); err == nil {
		t.Fatal("expected error for blank quality")
	}
}

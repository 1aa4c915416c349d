package ai

import (
	"errors"
	"testing"
)

func TestParseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Domain
		wantErr bool
	}{
		{input: "Technical", want: DomainTechnical},
		{input: "  Technical\n", want: DomainTechnical},
		{input: "Non Technical", want: DomainNonTechnical},
		{input: "NonTechnical", want: DomainNonTechnical},
		{input: " Non Technical ", want: DomainNonTechnical},
		{input: "technical", wantErr: true},
		{input: "TECHNICAL", wantErr: true},
		{input: "tech-nical", wantErr: true},
		{input: "t e c h n i c a l", wantErr: true},
		{input: "non-technical", wantErr: true},
		{input: "non_tech_nical", wantErr: true},
		{input: "Non  Technical", wantErr: true},
		{input: "Behavioural", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDomain(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDomain) {
					t.Fatalf("expected ErrUnknownDomain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

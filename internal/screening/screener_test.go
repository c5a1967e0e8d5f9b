package screening

import "testing"

func TestScreenClean(t *testing.T) {
	s := Default()
	res := s.Screen("Preciso de um canalizador para reparar a torneira da cozinha.")
	if !res.Clean {
		t.Errorf("expected clean, got %+v", res)
	}
	if res.RiskLevel != RiskLow || res.Recommendation != RecommendApprove {
		t.Errorf("clean content: got %s/%s, want low/approve", res.RiskLevel, res.Recommendation)
	}
}

func TestScreenSingleTerm(t *testing.T) {
	s := Default()
	res := s.Screen("Isto parece um golpe.")
	if res.Clean {
		t.Error("expected not clean")
	}
	if len(res.FlaggedTerms) != 1 || res.FlaggedTerms[0] != "golpe" {
		t.Errorf("flagged terms: got %v, want [golpe]", res.FlaggedTerms)
	}
	if res.RiskLevel != RiskMedium || res.Recommendation != RecommendReview {
		t.Errorf("single term: got %s/%s, want medium/review", res.RiskLevel, res.Recommendation)
	}
}

func TestScreenSinglePattern(t *testing.T) {
	s := Default()
	res := s.Screen("Podemos fazer a transferencia direto para mim?")
	if len(res.MatchedPatterns) != 1 {
		t.Fatalf("matched patterns: got %v, want 1 match", res.MatchedPatterns)
	}
	if res.RiskLevel != RiskMedium || res.Recommendation != RecommendReview {
		t.Errorf("single pattern: got %s/%s, want medium/review", res.RiskLevel, res.Recommendation)
	}
}

func TestScreenManyTermsBlocks(t *testing.T) {
	s := Default()
	res := s.Screen("fraude scam golpe")
	if len(res.FlaggedTerms) != 3 {
		t.Fatalf("flagged terms: got %v, want 3", res.FlaggedTerms)
	}
	if res.RiskLevel != RiskHigh || res.Recommendation != RecommendBlock {
		t.Errorf("three terms: got %s/%s, want high/block", res.RiskLevel, res.Recommendation)
	}
}

func TestScreenTwoPatternsBlock(t *testing.T) {
	s := Default()
	res := s.Screen("Paga fora da plataforma, manda no whatsapp o pagamento.")
	if len(res.MatchedPatterns) < 2 {
		t.Fatalf("matched patterns: got %v, want >= 2", res.MatchedPatterns)
	}
	if res.RiskLevel != RiskHigh || res.Recommendation != RecommendBlock {
		t.Errorf("two patterns: got %s/%s, want high/block", res.RiskLevel, res.Recommendation)
	}
}

func TestScreenNeverMutates(t *testing.T) {
	s := Default()
	content := "transferencia direto por favor"
	first := s.Screen(content)
	second := s.Screen(content)
	if first.RiskLevel != second.RiskLevel || first.Recommendation != second.Recommendation {
		t.Errorf("repeated screening diverged: %+v vs %+v", first, second)
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize(`<script>alert("x")</script>ola & adeus`)
	if got != "alert(&quot;x&quot;)ola &amp; adeus" {
		t.Errorf("Sanitize: got %q", got)
	}
}

package inventory

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		days int
		want Urgency
	}{
		{-5, UrgencyCritical},
		{0, UrgencyCritical},
		{1, UrgencyCritical},
		{3, UrgencyCritical}, // boundary: exactly 3 is critical
		{4, UrgencyWarning},
		{7, UrgencyWarning}, // boundary: exactly 7 is warning
		{8, UrgencyNormal},  // boundary: exactly 8 is normal
		{30, UrgencyNormal},
	}

	for _, c := range cases {
		if got := Classify(c.days); got != c.want {
			t.Errorf("Classify(%d) = %s, want %s", c.days, got, c.want)
		}
	}
}

func TestFeedLabel(t *testing.T) {
	if got := FeedLabel(-1); got != UrgencyExpired {
		t.Errorf("FeedLabel(-1) = %s, want expired", got)
	}
	if got := FeedLabel(0); got != UrgencyCritical {
		t.Errorf("FeedLabel(0) = %s, want critical", got)
	}
	if got := FeedLabel(10); got != UrgencyNormal {
		t.Errorf("FeedLabel(10) = %s, want normal", got)
	}
}

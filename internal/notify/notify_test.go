package notify

import "testing"

func TestParseReplyAccepts(t *testing.T) {
	parsed, ok := ParseReply("YES ab12cd34")
	if !ok || !parsed.Accepted || parsed.Prefix != "ab12cd34" {
		t.Fatalf("expected accepted reply with prefix ab12cd34, got %+v ok=%v", parsed, ok)
	}
}

func TestParseReplyDeclinesCaseInsensitive(t *testing.T) {
	parsed, ok := ParseReply("  no AB12CD34  ")
	if !ok || parsed.Accepted || parsed.Prefix != "AB12CD34" {
		t.Fatalf("expected declined reply, got %+v ok=%v", parsed, ok)
	}
}

func TestParseReplyRejectsMalformed(t *testing.T) {
	cases := []string{"YES", "MAYBE ab12cd34", "YES ab12cd345", "YES ab12cd3", ""}
	for _, c := range cases {
		if _, ok := ParseReply(c); ok {
			t.Errorf("expected %q to be rejected", c)
		}
	}
}

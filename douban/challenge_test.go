package douban

import (
	"fmt"
	"testing"
)

// gatePage builds an anti-bot gate page carrying the given puzzle parameters.
func gatePage(cha, dif string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>安全验证</title></head>
<body>
<form name="sec" id="sec" action="/sec/verify" method="post" data-ck="sec_ck">
  <input type="hidden" name="cha" value="%s">
  <input type="hidden" name="dif" value="%s">
  <input type="hidden" name="tok" value="f81a0c3e">
</form>
<script src="/sec/challenge.js"></script>
</body>
</html>`, cha, dif)
}

func TestDetect_GatePage(t *testing.T) {
	ch := Detect(gatePage("7f3b", "2"))
	if ch == nil {
		t.Fatal("gate page not detected")
	}
	if len(ch.Seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d: %v", len(ch.Seeds), ch.Seeds)
	}
	if ch.Seeds[0] != "7f3b" || ch.Seeds[1] != "2" {
		t.Errorf("seeds = %v, want [7f3b 2]", ch.Seeds)
	}
	if ch.CookieName != "sec_ck" {
		t.Errorf("cookie name = %q, want sec_ck", ch.CookieName)
	}
}

func TestDetect_ContentPage(t *testing.T) {
	page := `<html><body><div class="result"><h3><a>Some Movie</a></h3></div></body></html>`
	if ch := Detect(page); ch != nil {
		t.Errorf("content page misdetected as challenge: %+v", ch)
	}
}

func TestDetect_PageWithBothMarkers(t *testing.T) {
	// A page carrying real results is content even if a sec form is embedded.
	page := `<html><body>
<form name="sec" id="sec"><input type="hidden" name="cha" value="x"></form>
<div class="result"><h3><a>Some Movie</a></h3></div>
</body></html>`
	if ch := Detect(page); ch != nil {
		t.Errorf("result page with embedded form misdetected as challenge: %+v", ch)
	}
}

func TestDetect_DefaultCookieName(t *testing.T) {
	page := `<html><body><form name="sec" id="sec">
<input type="hidden" name="cha" value="a">
<input type="hidden" name="dif" value="1">
</form></body></html>`
	ch := Detect(page)
	if ch == nil {
		t.Fatal("gate page not detected")
	}
	if ch.CookieName != "sec_ck" {
		t.Errorf("cookie name = %q, want default sec_ck", ch.CookieName)
	}
}

func TestSolve_KnownNonces(t *testing.T) {
	tests := []struct {
		cha  string
		dif  string
		want string
	}{
		{"xyz", "1", "5"},
		{"a", "2", "60"},
		{"7f3b", "2", "315"},
		{"a", "3", "1420"},
	}

	for _, tt := range tests {
		t.Run(tt.cha+"/"+tt.dif, func(t *testing.T) {
			token, err := Solve(&Challenge{Seeds: []string{tt.cha, tt.dif}, CookieName: "sec_ck"})
			if err != nil {
				t.Fatalf("Solve() error: %v", err)
			}
			if token.Value != tt.want {
				t.Errorf("nonce = %s, want %s", token.Value, tt.want)
			}
			if token.Name != "sec_ck" {
				t.Errorf("token name = %q, want sec_ck", token.Name)
			}
		})
	}
}

func TestSolve_Deterministic(t *testing.T) {
	ch := &Challenge{Seeds: []string{"abc123", "3"}, CookieName: "sec_ck"}
	first, err := Solve(ch)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	second, err := Solve(ch)
	if err != nil {
		t.Fatalf("Solve() error on second run: %v", err)
	}
	if first != second {
		t.Errorf("same challenge produced different tokens: %+v vs %+v", first, second)
	}
	if first.Value != "24934" {
		t.Errorf("nonce = %s, want 24934", first.Value)
	}
}

func TestSolve_UnsupportedShapes(t *testing.T) {
	tests := []struct {
		name  string
		seeds []string
	}{
		{"missing difficulty", []string{"a"}},
		{"too many seeds", []string{"a", "2", "extra"}},
		{"no seeds", nil},
		{"non-numeric difficulty", []string{"a", "hard"}},
		{"zero difficulty", []string{"a", "0"}},
		{"negative difficulty", []string{"a", "-1"}},
		{"excessive difficulty", []string{"a", "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(&Challenge{Seeds: tt.seeds, CookieName: "sec_ck"})
			if err != ErrUnsupportedChallenge {
				t.Errorf("Solve() error = %v, want ErrUnsupportedChallenge", err)
			}
		})
	}
}

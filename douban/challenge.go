package douban

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Markers distinguishing an anti-bot gate page from a real result page. The
// gate form always carries name="sec" and id="sec"; a genuine search response
// always carries at least one result block. A page with both is treated as
// content, so detection only ever fires on a pure gate.
const (
	gateMarker   = `<form name="sec" id="sec"`
	resultMarker = `<div class="result"`
)

// defaultProofCookie is the cookie name the gate expects the proof under when
// the form does not name one itself.
const defaultProofCookie = "sec_ck"

// maxDifficulty caps the leading-zero count the solver will attempt. Anything
// above this is either a parse artifact or a puzzle too expensive to grind.
const maxDifficulty = 6

var (
	chaRe = regexp.MustCompile(`name="cha"\s+value="([^"]+)"`)
	difRe = regexp.MustCompile(`name="dif"\s+value="([^"]+)"`)
	ckRe  = regexp.MustCompile(`data-ck="([^"]+)"`)
)

// ErrUnsupportedChallenge reports a gate whose parameters do not fit the known
// proof-of-work shape.
var ErrUnsupportedChallenge = errors.New("unsupported challenge parameters")

// Challenge holds the parameters scraped from a gate page.
type Challenge struct {
	// Seeds are the puzzle inputs in page order: the challenge string
	// followed by the difficulty.
	Seeds []string

	// CookieName is where the site expects the computed proof.
	CookieName string
}

// ProofToken is a solved challenge, ready to be attached to the session.
type ProofToken struct {
	Name  string
	Value string
}

// Detect reports whether body is a gate page rather than content, returning
// the scraped challenge parameters if so and nil otherwise.
func Detect(body string) *Challenge {
	if !strings.Contains(body, gateMarker) || strings.Contains(body, resultMarker) {
		return nil
	}
	ch := &Challenge{CookieName: defaultProofCookie}
	if m := chaRe.FindStringSubmatch(body); m != nil {
		ch.Seeds = append(ch.Seeds, m[1])
	}
	if m := difRe.FindStringSubmatch(body); m != nil {
		ch.Seeds = append(ch.Seeds, m[1])
	}
	if m := ckRe.FindStringSubmatch(body); m != nil {
		ch.CookieName = m[1]
	}
	return ch
}

// Solve grinds the proof-of-work puzzle: the smallest positive nonce whose
// SHA-512 digest of challenge+nonce starts with the required number of hex
// zeros. Deterministic: the same challenge always yields the same token.
func Solve(ch *Challenge) (ProofToken, error) {
	if len(ch.Seeds) != 2 {
		return ProofToken{}, ErrUnsupportedChallenge
	}
	difficulty, err := strconv.Atoi(ch.Seeds[1])
	if err != nil || difficulty < 1 || difficulty > maxDifficulty {
		return ProofToken{}, ErrUnsupportedChallenge
	}

	prefix := strings.Repeat("0", difficulty)
	for nonce := 1; ; nonce++ {
		sum := sha512.Sum512([]byte(ch.Seeds[0] + strconv.Itoa(nonce)))
		if strings.HasPrefix(hex.EncodeToString(sum[:]), prefix) {
			return ProofToken{Name: ch.CookieName, Value: strconv.Itoa(nonce)}, nil
		}
	}
}

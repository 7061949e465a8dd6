package proto

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func TestParseChallenge(t *testing.T) {
	c, err := ParseChallenge("abc123:merovingian:9:SHA512,SHA256,MD5:LIT:SHA512:auto_commit,reply_size")
	if err != nil {
		t.Fatal(err)
	}
	if c.Salt != "abc123" || c.ServerName != "merovingian" || c.ProtocolVersion != 9 {
		t.Errorf("got %+v", c)
	}
	if len(c.DigestAlgorithms) != 3 || c.DigestAlgorithms[0] != "SHA512" {
		t.Errorf("digest algos = %v", c.DigestAlgorithms)
	}
	if len(c.Options) != 2 {
		t.Errorf("options = %v", c.Options)
	}
}

func TestChallengeChooseDigestPicksStrongest(t *testing.T) {
	c := &Challenge{DigestAlgorithms: []string{"MD5", "SHA1", "SHA256"}}
	algo, err := c.ChooseDigest("")
	if err != nil {
		t.Fatal(err)
	}
	if algo != "SHA256" {
		t.Errorf("got %q, want SHA256", algo)
	}
}

func TestChallengeChooseDigestHonorsPreference(t *testing.T) {
	c := &Challenge{DigestAlgorithms: []string{"MD5", "SHA1", "SHA256"}}
	algo, err := c.ChooseDigest("SHA1")
	if err != nil {
		t.Fatal(err)
	}
	if algo != "SHA1" {
		t.Errorf("got %q, want SHA1", algo)
	}
}

func TestChallengeChooseDigestNoCommonAlgorithm(t *testing.T) {
	c := &Challenge{DigestAlgorithms: []string{"CRC32"}}
	if _, err := c.ChooseDigest(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestPasswordDigestDoubleHashesWithSalt(t *testing.T) {
	got, err := PasswordDigest("SHA512", "monetdb", "saltvalue")
	if err != nil {
		t.Fatal(err)
	}
	pw := sha512.Sum512([]byte("monetdb"))
	pwHex := hex.EncodeToString(pw[:])
	want := sha512.Sum512([]byte(pwHex + "saltvalue"))
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("got %q", got)
	}
}

func TestLoginBlockFormat(t *testing.T) {
	autocommit := true
	opts := HandshakeOptions{Autocommit: &autocommit}
	block := LoginBlock("LIT", "monetdb", "SHA512", "deadbeef", "sql", "demo", opts)
	want := "LIT:monetdb:{SHA512}deadbeef:sql:demo:auto_commit=1;\n"
	if block != want {
		t.Errorf("got %q, want %q", block, want)
	}
}

func TestNegotiateAcceptedOnlyMarksAdvertisedOptions(t *testing.T) {
	c := &Challenge{Options: []string{"auto_commit"}}
	requested := []HandshakeOption{{Key: "auto_commit", Value: "1"}, {Key: "reply_size", Value: "250"}}
	accepted := NegotiateAccepted(c, requested)
	if !accepted["auto_commit"] || accepted["reply_size"] {
		t.Errorf("got %+v", accepted)
	}
}

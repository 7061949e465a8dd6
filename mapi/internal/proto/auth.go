package proto

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// supportedDigests lists the digest algorithms this client implements, in
// strongest-first order (spec §4.3 step 1: "Picks the strongest digest
// algorithm the server advertises among those the client implements").
var supportedDigests = []string{"SHA512", "SHA256", "SHA1", "MD5"}

func digest(algo string, data []byte) ([]byte, error) {
	switch strings.ToUpper(algo) {
	case "SHA512":
		sum := sha512.Sum512(data)
		return sum[:], nil
	case "SHA256":
		sum := sha256.Sum256(data)
		return sum[:], nil
	case "SHA1":
		sum := sha1.Sum(data)
		return sum[:], nil
	case "MD5":
		sum := md5.Sum(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("proto: unsupported digest algorithm %q", algo)
	}
}

// Challenge is the parsed form of the server's single opening handshake
// line: salt, server name, protocol version, supported digest algorithms,
// endianness flag, password hash algorithm, and the handshake-option
// slots it advertises (spec §4.3).
//
// Wire form: "salt:server:protoversion:hashalgos:endian:pwhashalgo:opts\n"
type Challenge struct {
	Salt             string
	ServerName       string
	ProtocolVersion  int
	DigestAlgorithms []string
	Endianness       string
	PasswordAlgo     string
	Options          []string
}

// ParseChallenge parses the raw challenge line (without its trailing
// newline).
func ParseChallenge(line string) (*Challenge, error) {
	fields := strings.Split(line, ":")
	if len(fields) < 6 {
		return nil, fmt.Errorf("proto: malformed challenge line: %q", line)
	}
	protoVersion, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("proto: invalid protocol version %q: %w", fields[2], err)
	}
	c := &Challenge{
		Salt:             fields[0],
		ServerName:       fields[1],
		ProtocolVersion:  protoVersion,
		DigestAlgorithms: splitNonEmpty(fields[3], ","),
		Endianness:       fields[4],
		PasswordAlgo:     fields[5],
	}
	if len(fields) > 6 {
		c.Options = splitNonEmpty(fields[6], ",")
	}
	return c, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChooseDigest picks the strongest algorithm present in both c's
// advertised list and supportedDigests, optionally constrained by a
// client-side hash preference (Config.Hash; empty means unconstrained).
func (c *Challenge) ChooseDigest(prefer string) (string, error) {
	serverSet := make(map[string]bool, len(c.DigestAlgorithms))
	for _, a := range c.DigestAlgorithms {
		serverSet[strings.ToUpper(a)] = true
	}
	for _, candidate := range supportedDigests {
		if prefer != "" && !strings.EqualFold(prefer, candidate) {
			continue
		}
		if serverSet[candidate] {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("proto: no common digest algorithm (server offers %v)", c.DigestAlgorithms)
}

// PasswordDigest computes the password digest over password and salt
// using algo, hex-encoded (spec §4.3 step 2).
func PasswordDigest(algo, password, salt string) (string, error) {
	pw, err := digest(algo, []byte(password))
	if err != nil {
		return "", err
	}
	pwHex := hex.EncodeToString(pw)
	salted, err := digest(algo, []byte(pwHex+salt))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(salted), nil
}

// HandshakeOption is a single key/value the client may set in the login
// block (spec §4.3 step 3 / GLOSSARY "Handshake option").
type HandshakeOption struct {
	Key   string
	Value string
}

// HandshakeOptions is the candidate set of login-block options, built
// from a session's requested configuration.
type HandshakeOptions struct {
	Autocommit       *bool
	ReplySize        *int
	SizeHeader       *bool
	TimezoneOffsetHM string // e.g. "+02:00"; empty means unset
}

// toSend returns every option that is set (non-nil, or a non-empty
// time-zone offset), to be written into the login block. Values are not
// compared against server defaults: an option set to the server's default
// value is still sent.
func (o HandshakeOptions) toSend() []HandshakeOption {
	var opts []HandshakeOption
	if o.Autocommit != nil {
		v := "0"
		if *o.Autocommit {
			v = "1"
		}
		opts = append(opts, HandshakeOption{Key: "auto_commit", Value: v})
	}
	if o.ReplySize != nil {
		opts = append(opts, HandshakeOption{Key: "reply_size", Value: strconv.Itoa(*o.ReplySize)})
	}
	if o.SizeHeader != nil {
		v := "0"
		if *o.SizeHeader {
			v = "1"
		}
		opts = append(opts, HandshakeOption{Key: "sizeheader", Value: v})
	}
	if o.TimezoneOffsetHM != "" {
		opts = append(opts, HandshakeOption{Key: "time_zone", Value: o.TimezoneOffsetHM})
	}
	return opts
}

// LoginBlock builds the single outgoing login block (spec §4.3 step 4):
// endianness, user, digest, language, database, and the option list as
// `k=v;`.
func LoginBlock(endianness, user, algo, digestHex, language, database string, opts HandshakeOptions) string {
	var sb strings.Builder
	sb.WriteString(endianness)
	sb.WriteByte(':')
	sb.WriteString(user)
	sb.WriteByte(':')
	sb.WriteByte('{')
	sb.WriteString(algo)
	sb.WriteByte('}')
	sb.WriteString(digestHex)
	sb.WriteByte(':')
	sb.WriteString(language)
	sb.WriteByte(':')
	sb.WriteString(database)
	sb.WriteByte(':')
	for _, opt := range opts.toSend() {
		sb.WriteString(opt.Key)
		sb.WriteByte('=')
		sb.WriteString(opt.Value)
		sb.WriteByte(';')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// HandshakeResult is what the client learns from the server's reply to
// the login block.
type HandshakeResult struct {
	Redirect string // non-empty if the server asked to redirect
	// Accepted reports, per option key sent, whether the server applied it
	// during the handshake itself (spec §4.3 step 6): an option is only
	// considered accepted here if the server's challenge advertised
	// support for it among its option slots; every option not accepted
	// must be applied via an explicit follow-up control command.
	Accepted map[string]bool
	Warnings []string
}

// NegotiateAccepted computes which requested options the server is taken
// to have accepted at handshake time, from the challenge's advertised
// option-slot list.
func NegotiateAccepted(c *Challenge, requested []HandshakeOption) map[string]bool {
	advertised := make(map[string]bool, len(c.Options))
	for _, o := range c.Options {
		advertised[o] = true
	}
	accepted := make(map[string]bool, len(requested))
	for _, opt := range requested {
		accepted[opt.Key] = advertised[opt.Key]
	}
	return accepted
}

package proto

import (
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/MonetDB/monetdb-go/mapi/internal/trace"
)

var authTrace = trace.New("mapi", "auth")
var authTraceFlag = trace.NewFlag(authTrace)

func init() {
	flag.Var(authTraceFlag, "mapi.auth", "enable mapi authentication trace")
}

// HandshakeParams bundles the inputs Handshake needs from the session's
// Config.
type HandshakeParams struct {
	User, Password, Database, Language string
	PreferredHash                      string
	Options                            HandshakeOptions
	Timeout                            time.Duration
}

// Handshake performs the full challenge/response/login exchange described
// in spec §4.3 over conn, and returns the negotiated result. On success,
// the returned LineReader is ready for the authenticated session loop;
// the caller still owns applying any option the server did not
// accept via follow-up control commands.
func Handshake(conn net.Conn, p HandshakeParams) (*HandshakeResult, *LineReader, error) {
	lr := NewLineReader(conn, p.Timeout)

	if err := lr.Advance(); err != nil {
		return nil, nil, fmt.Errorf("mapi: reading handshake challenge: %w", err)
	}
	challenge, err := ParseChallenge(lr.CurrentLine())
	if err != nil {
		return nil, nil, fmt.Errorf("mapi: parsing handshake challenge: %w", err)
	}
	authTrace.Output(2, fmt.Sprintf("challenge: %+v", challenge))

	algo, err := challenge.ChooseDigest(p.PreferredHash)
	if err != nil {
		return nil, nil, err
	}

	digestHex, err := PasswordDigest(algo, p.Password, challenge.Salt)
	if err != nil {
		return nil, nil, err
	}

	requested := p.Options.toSend()
	block := LoginBlock("LIT", p.User, algo, digestHex, p.Language, p.Database, p.Options)
	authTrace.Output(2, fmt.Sprintf("login block: %q", block))

	if _, err := conn.Write([]byte(block)); err != nil {
		return nil, nil, fmt.Errorf("mapi: writing login block: %w", err)
	}

	result := &HandshakeResult{Accepted: NegotiateAccepted(challenge, requested)}

	for {
		if err := lr.Advance(); err != nil {
			return nil, nil, fmt.Errorf("mapi: reading handshake response: %w", err)
		}
		switch lr.CurrentLineType() {
		case LinePrompt:
			line := lr.CurrentLine()
			if len(line) > 1 {
				result.Redirect = line[1:]
			}
			return result, lr, nil
		case LineInfo:
			result.Warnings = append(result.Warnings, lr.CurrentLine()[1:])
		case LineError:
			return nil, nil, &authWireError{msg: lr.CurrentLine()[1:]}
		default:
			return nil, nil, fmt.Errorf("mapi: unexpected line during handshake: %q", lr.CurrentLine())
		}
	}
}

type authWireError struct{ msg string }

func (e *authWireError) Error() string { return e.msg }
